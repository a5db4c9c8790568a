package models

import "time"

// Notification kinds pushed to display subscribers.
const (
	NotificationQuote  = "quote"
	NotificationStatus = "status"
	NotificationError  = "error"
)

// Notification is a user-facing message: a displayed quote, a start/stop
// acknowledgement or a reported failure.
type Notification struct {
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
