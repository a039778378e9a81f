package model

import (
	"strings"
	"time"
)

type EventType string

const (
	EventPaymentIntentSucceeded     EventType = "payment_intent.succeeded"
	EventPaymentIntentPaymentFailed EventType = "payment_intent.payment_failed"
	EventSubscriptionCreated        EventType = "customer.subscription.created"
	EventSubscriptionUpdated        EventType = "customer.subscription.updated"
	EventSubscriptionDeleted        EventType = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded    EventType = "invoice.payment_succeeded"
	EventInvoicePaymentFailed       EventType = "invoice.payment_failed"
)

// Metadata keys written at checkout.
const (
	MetaOrderID         = "orderId"
	MetaSellerID        = "sellerId"
	MetaProductionID    = "productionId"
	MetaPerformanceID   = "performanceId"
	MetaAmount          = "amount"
	MetaCurrency        = "currency"
	MetaCustomerEmail   = "customerEmail"
	MetaEmail           = "email"
	MetaUserID          = "userId"
	MetaVenueID         = "venueId"
	MetaVenueName       = "venueName"
	MetaVenueAddress    = "venueAddress"
	MetaVenueCity       = "venueCity"
	MetaVenueState      = "venueState"
	MetaVenueZip        = "venueZip"
	MetaPerformanceDate = "performanceDate"
	MetaPerformanceTime = "performanceTime"
	MetaTickets         = "tickets"
)

// Event is a verified provider notification. Exactly one payload pointer is set
// for the handled types; others carry none.
type Event struct {
	ID      string
	Type    EventType
	Account string // connected account that originated the event, if any
	Created time.Time

	PaymentIntent *PaymentIntent
	Subscription  *SubscriptionSnapshot
	Invoice       *InvoiceSnapshot
}

// PaymentIntent is the provider payment object as seen by the pipeline.
type PaymentIntent struct {
	ID             string
	Amount         int64
	AmountReceived int64
	Currency       string
	CustomerID     string
	ReceiptEmail   string
	Metadata       map[string]string

	// AccountContext is the account the object was read from ("" = platform).
	AccountContext string
}

// CapturedAmount is the authoritative charged amount.
func (p *PaymentIntent) CapturedAmount() int64 {
	if p.AmountReceived > 0 {
		return p.AmountReceived
	}
	return p.Amount
}

// Meta returns the trimmed metadata value for key.
func (p *PaymentIntent) Meta(key string) string {
	if p == nil || p.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(p.Metadata[key])
}

type SubscriptionSnapshot struct {
	ID                 string
	CustomerID         string
	Status             SubscriptionStatus
	PlanID             string
	PlanName           string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	Metadata           map[string]string
}

type InvoiceSnapshot struct {
	ID             string
	CustomerID     string
	SubscriptionID string
	Metadata       map[string]string
}

// Customer is the provider customer profile.
type Customer struct {
	ID       string
	Email    string
	Metadata map[string]string
}
