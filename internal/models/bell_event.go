package models

import "time"

// Event types recorded in the bell history.
const (
	EventStart = "START"
	EventStop  = "STOP"
	EventTone  = "TONE"
	EventQuote = "QUOTE"
	EventError = "ERROR"
)

// BellEvent is a single history entry.
type BellEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | TONE | QUOTE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
