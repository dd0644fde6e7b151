package decode

import (
	"image"
	"io"
	"time"
)

// RawFrame is one decoded raster plus its source timestamp. Frames are
// ephemeral: each is owned by the caller only until the next call to Next.
type RawFrame struct {
	Image     image.Image
	Timestamp time.Duration
}

// Source yields decoded frames in order. Next returns io.EOF after the last
// frame. Sources are not restartable.
type Source interface {
	Next() (RawFrame, error)
	Close() error
}

// SliceSource serves pre-built frames, for tests and synthetic pipelines.
type SliceSource struct {
	frames []RawFrame
	pos    int
}

// NewSliceSource returns a Source over the given frames.
func NewSliceSource(frames []RawFrame) *SliceSource {
	return &SliceSource{frames: frames}
}

func (s *SliceSource) Next() (RawFrame, error) {
	if s.pos >= len(s.frames) {
		return RawFrame{}, io.EOF
	}
	frame := s.frames[s.pos]
	s.pos++
	return frame, nil
}

func (s *SliceSource) Close() error { return nil }
