package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnreadable marks a video or frame source that cannot be
	// opened or decoded. Fatal to the extraction run.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrEmptyWindow marks a sampling window that excludes every frame.
	// Non-fatal: the pipeline yields zero frames.
	ErrEmptyWindow = errors.New("empty sampling window")
	// ErrIndexOutOfRange marks a sequence edit addressed at a position
	// that does not exist. The sequence is left unchanged.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrCompositionFailed marks a composition worker that exited
	// non-zero. The diagnostic text is carried in the wrapped error.
	ErrCompositionFailed = errors.New("composition failed")
	// ErrTimeout marks a composition run that was terminated after
	// exceeding its deadline. Surfaced distinctly from
	// ErrCompositionFailed so callers can retry with a narrower input.
	ErrTimeout = errors.New("timeout")

	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether the error should abort the run it occurred in.
// ErrEmptyWindow is the only member of the taxonomy that is not fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrEmptyWindow)
}

// Message returns the human-readable portion of a wrapped error: everything
// after the sentinel marker prefix, or the full text for untagged errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{
		ErrSourceUnreadable,
		ErrEmptyWindow,
		ErrIndexOutOfRange,
		ErrCompositionFailed,
		ErrTimeout,
		ErrExternalTool,
		ErrValidation,
		ErrConfiguration,
	} {
		prefix := marker.Error() + ": "
		if errors.Is(err, marker) && strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
