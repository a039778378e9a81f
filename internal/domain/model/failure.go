package model

import "time"

// FailedStep is a dead-letter record for a fulfillment step that was dropped.
type FailedStep struct {
	ID        string
	EventID   string
	EventType string
	Step      string
	OrderID   string
	UserID    string
	Recipient string
	Error     string
	CreatedAt time.Time
}
