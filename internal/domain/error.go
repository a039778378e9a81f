package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Scheduler errors
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool closed")

	// Coordination errors
	ErrLockHeld = errors.New("lock held by another worker")
)

// AuthenticationError is returned when an inbound notification fails signature verification.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// MissingMetadataError names every required metadata field absent from a payment event.
type MissingMetadataError struct {
	Fields []string
}

func (e *MissingMetadataError) Error() string {
	return "missing required metadata: " + strings.Join(e.Fields, ", ")
}

// NotFoundError identifies the absent record. errors.Is(err, ErrNotFound) holds.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound builds a NotFoundError for kind/id.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// TransientDeliveryError wraps a notification sender failure.
type TransientDeliveryError struct {
	Recipient string
	OrderID   string
	Err       error
}

func (e *TransientDeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s for order %s: %v", e.Recipient, e.OrderID, e.Err)
}

func (e *TransientDeliveryError) Unwrap() error { return e.Err }
