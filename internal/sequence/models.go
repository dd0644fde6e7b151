package sequence

import (
	"fmt"
	"time"
)

// Frame is a retained frame persisted in the project store. Position is the
// dense zero-based ordinal within the sequence and is reassigned on every
// structural change; ID is the stable row identity page-break flags hang off.
type Frame struct {
	ID             int64
	Position       int
	Name           string
	Timestamp      time.Duration
	PageBreakAfter bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Direction selects which neighbor a frame swaps with.
type Direction int

const (
	// Earlier moves the frame one position toward the front.
	Earlier Direction = iota
	// Later moves the frame one position toward the back.
	Later
)

func (d Direction) String() string {
	if d == Earlier {
		return "earlier"
	}
	return "later"
}

// FrameName returns the canonical on-disk file name for a position.
func FrameName(position int) string {
	return fmt.Sprintf("frame_%06d.png", position)
}
