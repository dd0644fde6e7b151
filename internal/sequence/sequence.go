package sequence

import (
	"fmt"
	"sort"

	"framepress/internal/services"
)

// Sequence is the in-memory ordered frame container edit operations run
// against. Mutations validate all inputs before touching state, so a failed
// call leaves the sequence exactly as it was.
type Sequence struct {
	frames []Frame
}

// New builds a sequence from frames already ordered by position. Positions
// are renumbered densely from zero.
func New(frames []Frame) *Sequence {
	cp := make([]Frame, len(frames))
	copy(cp, frames)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Position < cp[j].Position })
	s := &Sequence{frames: cp}
	s.renumber()
	return s
}

// Len reports the number of frames.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// Frames returns a copy of the ordered frames.
func (s *Sequence) Frames() []Frame {
	cp := make([]Frame, len(s.frames))
	copy(cp, s.frames)
	return cp
}

// Append adds a frame at the end of the sequence and returns its position.
func (s *Sequence) Append(frame Frame) int {
	frame.Position = len(s.frames)
	frame.Name = FrameName(frame.Position)
	s.frames = append(s.frames, frame)
	return frame.Position
}

// MoveAdjacent swaps the frame at index with its neighbor in the given
// direction. A move off either end is a no-op and returns false.
func (s *Sequence) MoveAdjacent(index int, dir Direction) (bool, error) {
	if err := s.checkIndex(index, "move"); err != nil {
		return false, err
	}
	neighbor := index - 1
	if dir == Later {
		neighbor = index + 1
	}
	if neighbor < 0 || neighbor >= len(s.frames) {
		return false, nil
	}
	s.frames[index], s.frames[neighbor] = s.frames[neighbor], s.frames[index]
	s.renumber()
	return true, nil
}

// Delete removes the frames at the given original indices in one step.
// Indices refer to positions before the call; duplicates collapse. Any
// out-of-range index rejects the whole batch with no partial mutation.
func (s *Sequence) Delete(indices []int) (int, error) {
	if len(indices) == 0 {
		return 0, nil
	}
	doomed := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if err := s.checkIndex(idx, "delete"); err != nil {
			return 0, err
		}
		doomed[idx] = struct{}{}
	}
	kept := s.frames[:0]
	for i, frame := range s.frames {
		if _, gone := doomed[i]; !gone {
			kept = append(kept, frame)
		}
	}
	removed := len(s.frames) - len(kept)
	s.frames = kept
	s.renumber()
	return removed, nil
}

// TogglePageBreak flips the page-break flag after each of the given
// frames. Duplicates collapse, so each listed frame flips once. Any
// out-of-range index rejects the whole batch with no partial mutation.
func (s *Sequence) TogglePageBreak(indices []int) error {
	targets := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if err := s.checkIndex(idx, "page break"); err != nil {
			return err
		}
		targets[idx] = struct{}{}
	}
	for idx := range targets {
		s.frames[idx].PageBreakAfter = !s.frames[idx].PageBreakAfter
	}
	return nil
}

// PageBreakPositions derives the current list of positions carrying a
// page-break flag. The list is computed from flags on demand and never
// stored, so edits cannot leave it stale.
func (s *Sequence) PageBreakPositions() []int {
	var positions []int
	for _, frame := range s.frames {
		if frame.PageBreakAfter {
			positions = append(positions, frame.Position)
		}
	}
	return positions
}

func (s *Sequence) renumber() {
	for i := range s.frames {
		s.frames[i].Position = i
		s.frames[i].Name = FrameName(i)
	}
}

func (s *Sequence) checkIndex(index int, operation string) error {
	if index >= 0 && index < len(s.frames) {
		return nil
	}
	return services.Wrap(services.ErrIndexOutOfRange, "sequence", operation,
		fmt.Sprintf("index %d outside [0,%d)", index, len(s.frames)), nil)
}
