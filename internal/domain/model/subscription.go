package model

import "time"

type SubscriptionStatus string

// Provider vocabulary; past_due and canceled double as local overlays.
const (
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

// Subscription mirrors the provider subscription of one user. Keyed by UserID.
type Subscription struct {
	UserID                 string
	PlanID                 string
	PlanName               string
	ExternalSubscriptionID string
	ExternalCustomerID     string
	Status                 SubscriptionStatus
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
	CanceledAt             *time.Time
	LastPaymentDate        *time.Time
	LastPaymentFailedDate  *time.Time
	UpdatedAt              time.Time
}

// SubscriptionPatch overlays selected fields onto an existing record.
type SubscriptionPatch struct {
	Status                *SubscriptionStatus
	CurrentPeriodStart    *time.Time
	CurrentPeriodEnd      *time.Time
	CancelAtPeriodEnd     *bool
	CanceledAt            *time.Time
	LastPaymentDate       *time.Time
	LastPaymentFailedDate *time.Time
}

// Apply copies the non-nil patch fields onto s.
func (p SubscriptionPatch) Apply(s *Subscription) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.CurrentPeriodStart != nil {
		s.CurrentPeriodStart = p.CurrentPeriodStart
	}
	if p.CurrentPeriodEnd != nil {
		s.CurrentPeriodEnd = p.CurrentPeriodEnd
	}
	if p.CancelAtPeriodEnd != nil {
		s.CancelAtPeriodEnd = *p.CancelAtPeriodEnd
	}
	if p.CanceledAt != nil {
		s.CanceledAt = p.CanceledAt
	}
	if p.LastPaymentDate != nil {
		s.LastPaymentDate = p.LastPaymentDate
	}
	if p.LastPaymentFailedDate != nil {
		s.LastPaymentFailedDate = p.LastPaymentFailedDate
	}
}
