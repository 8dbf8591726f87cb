// Package provider implements the context-provider facade: stand-in
// calendar and task sources queried through a uniform dispatch
// contract (provider name, operation name, arguments). The providers
// are local mocks with the same shape a real integration would have.
package provider

import (
	"errors"
	"time"
)

// Dispatch errors. Provider-level errors propagate unchanged; these
// two cover only the routing contract itself.
var (
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrUnknownOperation = errors.New("unknown operation")
)

// FreeSlot is a candidate time window for a focus block. Both bounds
// have minute precision and End is strictly after Start.
type FreeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Minutes returns the slot length in minutes.
func (s FreeSlot) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// CalendarEvent is one persisted calendar entry. Events are append
// only; nothing in this core edits or removes them.
type CalendarEvent struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TaskItem is one entry in the task list. Done is the only field
// mutated in place, via the complete operation.
type TaskItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Due   string `json:"due,omitempty"` // 2006-01-02, optional
	Done  bool   `json:"done"`
}

// Confirmation reports the outcome of a mutating operation.
type Confirmation struct {
	OK    bool           `json:"ok"`
	ID    string         `json:"id,omitempty"`
	Added *CalendarEvent `json:"added,omitempty"`
}
