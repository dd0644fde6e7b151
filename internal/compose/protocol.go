package compose

import (
	"encoding/json"
	"fmt"
	"io"
)

// Event is one JSON line on the worker's stdout. The worker emits any number
// of "progress" events followed by exactly one "result" event.
type Event struct {
	Type    string  `json:"type"`
	Message string  `json:"message,omitempty"`
	Percent float64 `json:"percent,omitempty"`
	Success bool    `json:"success,omitempty"`
}

const (
	eventProgress = "progress"
	eventResult   = "result"
)

// EmitProgress writes a progress event line.
func EmitProgress(w io.Writer, message string, percent float64) {
	writeEvent(w, Event{Type: eventProgress, Message: message, Percent: percent})
}

// EmitResult writes the terminal result event line.
func EmitResult(w io.Writer, success bool, message string) {
	writeEvent(w, Event{Type: eventResult, Success: success, Message: message})
}

func writeEvent(w io.Writer, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "%s\n", payload)
}
