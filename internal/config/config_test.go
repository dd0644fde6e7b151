package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framepress/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Extraction.SimilarityThreshold != 0.95 {
		t.Fatalf("unexpected similarity threshold: %v", cfg.Extraction.SimilarityThreshold)
	}
	if cfg.Extraction.CropThreshold != 30 {
		t.Fatalf("unexpected crop threshold: %v", cfg.Extraction.CropThreshold)
	}
	if cfg.Composition.Orientation != "portrait" {
		t.Fatalf("unexpected orientation: %q", cfg.Composition.Orientation)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[extraction]
similarity_threshold = 0.85
sample_interval = 0.0

[composition]
orientation = "LANDSCAPE"

[tools]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to load, got resolved=%s exists=%v", path, resolved, exists)
	}
	if cfg.Extraction.SimilarityThreshold != 0.85 {
		t.Fatalf("override not applied: %v", cfg.Extraction.SimilarityThreshold)
	}
	if cfg.Extraction.SampleInterval != 0 {
		t.Fatalf("zero interval should be preserved, got %v", cfg.Extraction.SampleInterval)
	}
	if cfg.Composition.Orientation != "landscape" {
		t.Fatalf("orientation not normalized: %q", cfg.Composition.Orientation)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg binary override not applied: %q", cfg.FFmpegBinary())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"similarity too high", func(c *config.Config) { c.Extraction.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"similarity zero", func(c *config.Config) { c.Extraction.SimilarityThreshold = 0 }, "similarity_threshold"},
		{"crop threshold range", func(c *config.Config) { c.Extraction.CropThreshold = 300 }, "crop_threshold"},
		{"negative interval", func(c *config.Config) { c.Extraction.SampleInterval = -1 }, "sample_interval"},
		{"orientation", func(c *config.Config) { c.Composition.Orientation = "diagonal" }, "orientation"},
		{"frame scale", func(c *config.Config) { c.Composition.FrameScale = 0 }, "frame_scale"},
		{"timeout", func(c *config.Config) { c.Composition.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"log format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config failed validation: %v", err)
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := config.ExpandPath("~/projects")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "projects") {
		t.Fatalf("unexpected expansion: %q", expanded)
	}
}
