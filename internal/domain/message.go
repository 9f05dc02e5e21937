package domain

import "time"

// RawMessage is a fetched mailbox message after header and body decoding.
// Immutable once fetched.
type RawMessage struct {
	ID      string
	Subject string
	Sender  string
	Date    time.Time
	Body    string
}

// Classification is the outcome of running a message through the pipeline.
// It is never persisted on its own; it either folds into an Application or
// only informs the notification decision.
type Classification struct {
	Category   Category
	Company    string
	Position   string
	Confidence float64
	Notes      string
}
