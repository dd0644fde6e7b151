package decode

import (
	"io"
	"time"

	"framepress/internal/services"
)

// Window bounds sampling to source timestamps in [Start, End). A zero End
// leaves the window open-ended.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Bounded reports whether the window has an upper bound.
func (w Window) Bounded() bool { return w.End > 0 }

// Sampler filters a Source down to the requested temporal cadence. With a
// positive interval, consecutive emitted frames are spaced at least the
// interval apart in source time; with a zero interval every decoded frame in
// the window is emitted.
type Sampler struct {
	source   Source
	interval time.Duration
	window   Window

	emitted  bool
	lastEmit time.Duration
	done     bool
}

// NewSampler wraps source. It fails with services.ErrEmptyWindow when the
// window bounds exclude everything; callers treat that as a zero-frame run,
// not a fatal error.
func NewSampler(source Source, interval time.Duration, window Window) (*Sampler, error) {
	if interval < 0 {
		interval = 0
	}
	if window.Bounded() && window.Start >= window.End {
		return nil, services.Wrap(services.ErrEmptyWindow, "decode", "sample",
			"start time is at or past end time", nil)
	}
	return &Sampler{source: source, interval: interval, window: window}, nil
}

// Next returns the next sampled frame, io.EOF when the source or window is
// exhausted.
func (s *Sampler) Next() (RawFrame, error) {
	if s.done {
		return RawFrame{}, io.EOF
	}
	for {
		frame, err := s.source.Next()
		if err != nil {
			if err == io.EOF {
				s.done = true
			}
			return RawFrame{}, err
		}
		if frame.Timestamp < s.window.Start {
			continue
		}
		if s.window.Bounded() && frame.Timestamp >= s.window.End {
			s.done = true
			return RawFrame{}, io.EOF
		}
		if s.emitted && s.interval > 0 && frame.Timestamp-s.lastEmit < s.interval {
			continue
		}
		s.emitted = true
		s.lastEmit = frame.Timestamp
		return frame, nil
	}
}

// Close releases the underlying source.
func (s *Sampler) Close() error {
	return s.source.Close()
}
