package services_test

import (
	"errors"
	"strings"
	"testing"

	"framepress/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrCompositionFailed, "compose", "render", "worker exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrCompositionFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"compose", "render", "worker exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "extract", "decode", "bad frame", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	if services.Fatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
	empty := services.Wrap(services.ErrEmptyWindow, "extract", "sample", "window excludes all frames", nil)
	if services.Fatal(empty) {
		t.Fatalf("empty window must not be fatal: %v", empty)
	}
	unreadable := services.Wrap(services.ErrSourceUnreadable, "extract", "open", "missing file", nil)
	if !services.Fatal(unreadable) {
		t.Fatalf("source unreadable must be fatal: %v", unreadable)
	}
}

func TestMessageStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrTimeout, "compose", "render", "killed after 30s", nil)
	msg := services.Message(err)
	if strings.Contains(msg, services.ErrTimeout.Error()+":") {
		t.Fatalf("expected marker prefix to be stripped, got %q", msg)
	}
	if !strings.Contains(msg, "killed after 30s") {
		t.Fatalf("expected detail retained, got %q", msg)
	}
	if got := services.Message(nil); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}
