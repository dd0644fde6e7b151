package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"framepress/internal/sequence"
	"framepress/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	projectDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	projectsDir := filepath.Join(base, "projects")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
projects_dir = %q
log_dir = %q
video_cache_dir = %q

[logging]
format = "json"
level = "error"
`, projectsDir, filepath.Join(base, "logs"), filepath.Join(base, "cache"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	projectDir := filepath.Join(projectsDir, "demo")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("mkdir project: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath, projectDir: projectDir}
}

func (env *cliTestEnv) seedFrames(t *testing.T, count int) {
	t.Helper()
	store, err := sequence.Open(env.projectDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()
	for i := 0; i < count; i++ {
		frame, err := store.Append(context.Background(), time.Duration(i)*time.Second)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		testsupport.WritePNG(t, filepath.Join(env.projectDir, frame.Name),
			testsupport.NewFrame(32, 24, uint8(i*50)))
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return buf.String(), err
}

func TestFramesListShowsSequence(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 2)

	out, err := runCLI(t, env, "frames", "list", "-p", "demo")
	if err != nil {
		t.Fatalf("frames list failed: %v\n%s", err, out)
	}
	for _, want := range []string{"frame_000000.png", "frame_000001.png", "00:00:01"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFramesListEmptyProject(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 0)

	out, err := runCLI(t, env, "frames", "list", "-p", "demo")
	if err != nil {
		t.Fatalf("frames list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No frames extracted yet") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestFramesDeleteRenumbers(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 3)

	out, err := runCLI(t, env, "frames", "delete", "0,2", "-p", "demo")
	if err != nil {
		t.Fatalf("frames delete failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Deleted 2 frame(s)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	listOut, err := runCLI(t, env, "frames", "list", "-p", "demo")
	if err != nil {
		t.Fatalf("frames list failed: %v", err)
	}
	if strings.Contains(listOut, "frame_000001.png") {
		t.Fatalf("survivor not renumbered to position 0:\n%s", listOut)
	}
	if !strings.Contains(listOut, "frame_000000.png") {
		t.Fatalf("missing renumbered survivor:\n%s", listOut)
	}
}

func TestFramesDeleteOutOfRangeFails(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 2)

	if _, err := runCLI(t, env, "frames", "delete", "5", "-p", "demo"); err == nil {
		t.Fatal("expected out-of-range delete to fail")
	}
	// Nothing was deleted.
	out, err := runCLI(t, env, "frames", "list", "-p", "demo")
	if err != nil {
		t.Fatalf("frames list failed: %v", err)
	}
	if !strings.Contains(out, "frame_000001.png") {
		t.Fatalf("failed delete mutated the sequence:\n%s", out)
	}
}

func TestFramesMoveBoundaryReportsNoOp(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 2)

	out, err := runCLI(t, env, "frames", "move", "0", "earlier", "-p", "demo")
	if err != nil {
		t.Fatalf("frames move failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "nothing moved") {
		t.Fatalf("expected boundary no-op message:\n%s", out)
	}
}

func TestFramesBreakToggle(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 2)

	out, err := runCLI(t, env, "frames", "break", "1", "-p", "demo")
	if err != nil {
		t.Fatalf("frames break failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Page break set after frame 1") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, env, "frames", "break", "1", "-p", "demo")
	if err != nil {
		t.Fatalf("frames break failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Page break cleared after frame 1") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestFramesBreakBatch(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 3)

	out, err := runCLI(t, env, "frames", "break", "0,2", "-p", "demo")
	if err != nil {
		t.Fatalf("frames break failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Page break set after frame 0") ||
		!strings.Contains(out, "Page break set after frame 2") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	// One bad index rejects the whole batch.
	if _, err := runCLI(t, env, "frames", "break", "1", "9", "-p", "demo"); err == nil {
		t.Fatal("expected out-of-range batch to fail")
	}
	out, err = runCLI(t, env, "frames", "list", "-p", "demo")
	if err != nil {
		t.Fatalf("frames list failed: %v\n%s", err, out)
	}
	if strings.Count(out, "yes") != 2 {
		t.Fatalf("expected flags unchanged after failed batch:\n%s", out)
	}
}

func TestCropSetShowClear(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 1)

	if out, err := runCLI(t, env, "crop", "set", "-p", "demo",
		"--top", "12", "--bottom", "8", "--left", "4", "--right", "4"); err != nil {
		t.Fatalf("crop set failed: %v\n%s", err, out)
	}

	out, err := runCLI(t, env, "crop", "show", "-p", "demo")
	if err != nil {
		t.Fatalf("crop show failed: %v", err)
	}
	if !strings.Contains(out, "top=12 bottom=8 left=4 right=4") {
		t.Fatalf("unexpected crop output:\n%s", out)
	}

	if _, err := runCLI(t, env, "crop", "clear", "-p", "demo"); err != nil {
		t.Fatalf("crop clear failed: %v", err)
	}
	out, err = runCLI(t, env, "crop", "show", "-p", "demo")
	if err != nil {
		t.Fatalf("crop show failed: %v", err)
	}
	if !strings.Contains(out, "No crop configured") {
		t.Fatalf("crop not cleared:\n%s", out)
	}
}

func TestCropSetRejectsNegative(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedFrames(t, 1)

	if _, err := runCLI(t, env, "crop", "set", "-p", "demo", "--top", "-1"); err == nil {
		t.Fatal("expected negative margin rejection")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh-config.toml")

	out, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	// A second init without --overwrite must refuse.
	if _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestConfigShowListsSettings(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, out)
	}
	for _, want := range []string{"extraction.similarity_threshold", "0.95", "composition.orientation", "portrait"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownProjectFails(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env, "frames", "list", "-p", "ghost"); err == nil {
		t.Fatal("expected unknown project to fail")
	}
}
