package service

import "time"

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "STOP", "TONE", "QUOTE", "ERROR"
}

// Ack is the outcome of a start or stop request.
type Ack string

const (
	AckTransitioned   Ack = "transitioned"
	AckAlreadyInState Ack = "already_in_state"
)
