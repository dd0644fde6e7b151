package project_test

import (
	"context"
	"path/filepath"
	"testing"

	"framepress/internal/project"
	"framepress/internal/sequence"
	"framepress/internal/testsupport"
)

func TestResolveCreatesProjectDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	proj, err := project.Resolve(cfg, "lecture-01", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(proj.Dir) != "lecture-01" {
		t.Fatalf("unexpected dir %s", proj.Dir)
	}

	// Resolving again without create finds the existing directory.
	if _, err := project.Resolve(cfg, "lecture-01", false); err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
}

func TestResolveMissingProjectFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := project.Resolve(cfg, "absent", false); err == nil {
		t.Fatal("expected missing project error")
	}
}

func TestResolveRejectsPathSeparators(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	for _, name := range []string{"../escape", "a/b", `a\b`, ""} {
		if _, err := project.Resolve(cfg, name, true); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
	}
}

func TestLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	proj, err := project.Resolve(cfg, "locked", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := proj.Lock(); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer func() { _ = proj.Unlock() }()

	second, err := project.Resolve(cfg, "locked", false)
	if err != nil {
		t.Fatalf("resolve second handle: %v", err)
	}
	if err := second.Lock(); err == nil {
		_ = second.Unlock()
		t.Fatal("expected second lock to fail while held")
	}
}

func TestFramePaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	proj, err := project.Resolve(cfg, "paths", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	store, err := proj.OpenStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	frame, err := store.Append(context.Background(), 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	paths := proj.FramePaths([]sequence.Frame{frame})
	want := filepath.Join(proj.Dir, "frame_000000.png")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("frame paths %v, want [%s]", paths, want)
	}
}
