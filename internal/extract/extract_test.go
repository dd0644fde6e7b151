package extract_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"framepress/internal/decode"
	"framepress/internal/extract"
	"framepress/internal/logging"
	"framepress/internal/project"
	"framepress/internal/services"
	"framepress/internal/testsupport"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "width": 64, "height": 48,
     "avg_frame_rate": "2/1", "r_frame_rate": "2/1"}
  ],
  "format": {"duration": "2.5"}
}`

// stubTools writes fake ffprobe/ffmpeg scripts that replay fixture data.
func stubTools(t *testing.T, frameLevels []uint8) (ffmpeg, ffprobe string) {
	t.Helper()
	dir := t.TempDir()

	probePath := filepath.Join(dir, "probe.json")
	if err := os.WriteFile(probePath, []byte(probeJSON), 0o644); err != nil {
		t.Fatalf("write probe fixture: %v", err)
	}

	var stream bytes.Buffer
	for _, level := range frameLevels {
		img := testsupport.NewFrame(64, 48, level)
		if err := png.Encode(&stream, img); err != nil {
			t.Fatalf("encode fixture frame: %v", err)
		}
	}
	framesPath := filepath.Join(dir, "frames.bin")
	if err := os.WriteFile(framesPath, stream.Bytes(), 0o644); err != nil {
		t.Fatalf("write frame fixture: %v", err)
	}

	ffprobe = filepath.Join(dir, "ffprobe")
	ffmpeg = filepath.Join(dir, "ffmpeg")
	writeScript(t, ffprobe, fmt.Sprintf("#!/bin/sh\ncat %s\n", probePath))
	writeScript(t, ffmpeg, fmt.Sprintf("#!/bin/sh\ncat %s\n", framesPath))
	return ffmpeg, ffprobe
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
}

func newProject(t *testing.T) *project.Project {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	proj, err := project.Resolve(cfg, "extract-test", true)
	if err != nil {
		t.Fatalf("resolve project: %v", err)
	}
	return proj
}

func writeVideoStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatalf("write video stub: %v", err)
	}
	return path
}

func TestRunRetainsDistinctFrames(t *testing.T) {
	// Frame 1 duplicates frame 0; everything else is distinct from its
	// retained predecessor.
	ffmpeg, ffprobe := stubTools(t, []uint8{200, 200, 60, 200, 120})
	proj := newProject(t)

	result, err := extract.Run(context.Background(), logging.NewNop(), proj, extract.Options{
		Video:               writeVideoStub(t),
		SimilarityThreshold: 0.95,
		CropThreshold:       30,
		FFmpeg:              ffmpeg,
		FFprobe:             ffprobe,
	})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if result.Processed != 5 {
		t.Fatalf("processed %d frames, want 5", result.Processed)
	}
	if result.Retained != 4 {
		t.Fatalf("retained %d frames, want 4", result.Retained)
	}
	if result.RunID == "" {
		t.Fatal("missing run id")
	}

	store, err := proj.OpenStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()
	frames, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(frames) != 4 {
		t.Fatalf("store holds %d frames, want 4", len(frames))
	}
	// Retained frames came from source timestamps 0, 1.0, 1.5, 2.0 at 2fps.
	wantTS := []time.Duration{0, time.Second, 1500 * time.Millisecond, 2 * time.Second}
	for i, frame := range frames {
		if frame.Timestamp != wantTS[i] {
			t.Fatalf("frame %d timestamp %v, want %v", i, frame.Timestamp, wantTS[i])
		}
		if _, err := os.Stat(proj.FramePath(frame.Name)); err != nil {
			t.Fatalf("frame file %s missing: %v", frame.Name, err)
		}
	}
}

func TestRunSamplingIntervalSkipsFrames(t *testing.T) {
	// Five frames at 2fps; a one second interval keeps every other frame.
	ffmpeg, ffprobe := stubTools(t, []uint8{50, 90, 130, 170, 210})
	proj := newProject(t)

	result, err := extract.Run(context.Background(), logging.NewNop(), proj, extract.Options{
		Video:               writeVideoStub(t),
		Interval:            time.Second,
		SimilarityThreshold: 0.95,
		CropThreshold:       30,
		FFmpeg:              ffmpeg,
		FFprobe:             ffprobe,
	})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if result.Processed != 3 {
		t.Fatalf("processed %d frames, want 3", result.Processed)
	}
}

func TestRunEmptyWindowSucceedsWithZeroFrames(t *testing.T) {
	ffmpeg, ffprobe := stubTools(t, []uint8{100})
	proj := newProject(t)

	result, err := extract.Run(context.Background(), logging.NewNop(), proj, extract.Options{
		Video:               writeVideoStub(t),
		Window:              decode.Window{Start: 5 * time.Second, End: 5 * time.Second},
		SimilarityThreshold: 0.95,
		CropThreshold:       30,
		FFmpeg:              ffmpeg,
		FFprobe:             ffprobe,
	})
	if err != nil {
		t.Fatalf("empty window must not fail: %v", err)
	}
	if result.Retained != 0 || result.Processed != 0 {
		t.Fatalf("empty window produced frames: %+v", result)
	}
}

func TestRunMissingVideoIsSourceUnreadable(t *testing.T) {
	ffmpeg, ffprobe := stubTools(t, nil)
	proj := newProject(t)

	_, err := extract.Run(context.Background(), logging.NewNop(), proj, extract.Options{
		Video:               filepath.Join(t.TempDir(), "missing.mp4"),
		SimilarityThreshold: 0.95,
		CropThreshold:       30,
		FFmpeg:              ffmpeg,
		FFprobe:             ffprobe,
	})
	if err == nil {
		t.Fatal("expected failure for missing video")
	}
	if !errors.Is(err, services.ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
}

func TestRunLockedProjectFails(t *testing.T) {
	ffmpeg, ffprobe := stubTools(t, []uint8{100})
	cfg0 := testsupport.NewConfig(t)
	holder, err := project.Resolve(cfg0, "contended", true)
	if err != nil {
		t.Fatalf("resolve holder: %v", err)
	}
	if err := holder.Lock(); err != nil {
		t.Fatalf("prelock: %v", err)
	}
	defer func() { _ = holder.Unlock() }()

	proj, err := project.Resolve(cfg0, "contended", false)
	if err != nil {
		t.Fatalf("resolve second handle: %v", err)
	}

	cfg := extract.Options{
		Video:               writeVideoStub(t),
		SimilarityThreshold: 0.95,
		CropThreshold:       30,
		FFmpeg:              ffmpeg,
		FFprobe:             ffprobe,
	}
	if _, err := extract.Run(context.Background(), logging.NewNop(), proj, cfg); err == nil {
		t.Fatal("expected lock contention to fail")
	}
}

func TestRunAppendsToExistingSequence(t *testing.T) {
	ffmpeg, ffprobe := stubTools(t, []uint8{100})
	proj := newProject(t)
	opts := extract.Options{
		Video:               writeVideoStub(t),
		SimilarityThreshold: 0.95,
		CropThreshold:       30,
		FFmpeg:              ffmpeg,
		FFprobe:             ffprobe,
	}
	if _, err := extract.Run(context.Background(), logging.NewNop(), proj, opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// A second identical run compares against the reloaded last frame and
	// drops everything as duplicates.
	result, err := extract.Run(context.Background(), logging.NewNop(), proj, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Retained != 0 {
		t.Fatalf("second run retained %d frames, want 0", result.Retained)
	}
}
