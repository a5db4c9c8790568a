package models

import "time"

// Run states reported by the controller.
const (
	RunStateStopped = "STOPPED"
	RunStateRunning = "RUNNING"
)

// NoQuoteHour marks a FireRecord that has not fired an hourly quote yet.
const NoQuoteHour = -1

// BellState is a point-in-time view of the schedule controller.
type BellState struct {
	State         string     `json:"state"` // STOPPED | RUNNING
	IsRunning     bool       `json:"is_running"`
	LastQuoteHour int        `json:"last_quote_hour"` // -1 until the first hourly quote of a run
	LastToneAt    *time.Time `json:"last_tone_at,omitempty"`
	LastQuoteAt   *time.Time `json:"last_quote_at,omitempty"`
	LastQuote     string     `json:"last_quote,omitempty"`
	NextToneAt    *time.Time `json:"next_tone_at,omitempty"` // only while running
	QuoteCount    int        `json:"quote_count"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
