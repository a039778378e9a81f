package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ViewTokenTTL is how long a customer-facing order link stays valid.
const ViewTokenTTL = 2 * 365 * 24 * time.Hour

// VenueSnapshot is copied onto the order at purchase time.
type VenueSnapshot struct {
	VenueID string
	Name    string
	Address string
	City    string
	State   string
	Zip     string
}

// Order is a purchase of tickets for one performance.
type Order struct {
	ID            string
	SellerID      string
	ProductionID  string
	PerformanceID string
	TotalAmount   int64 // minor currency units
	Currency      string
	Status        OrderStatus
	PaymentStatus PaymentStatus

	CustomerEmail string
	LegacyEmail   string // older orders stored the address under "email"
	HolderID      string // user id, or an email address on some legacy orders

	ViewToken          string
	ViewTokenExpiresAt *time.Time

	Venue           VenueSnapshot
	PerformanceDate string
	PerformanceTime string

	PaymentIntentID    string
	ConnectedAccountID string
	TicketIDs          []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaid reports whether payment has been captured for the order.
func (o *Order) IsPaid() bool { return o.PaymentStatus == PaymentStatusPaid }

// HasValidViewToken reports whether the order carries an unexpired view token.
func (o *Order) HasValidViewToken(now time.Time) bool {
	if o.ViewToken == "" {
		return false
	}
	return o.ViewTokenExpiresAt == nil || o.ViewTokenExpiresAt.After(now)
}

// OrderPatch lists the fields of an order to overwrite. Nil fields are left untouched.
type OrderPatch struct {
	Status             *OrderStatus
	PaymentStatus      *PaymentStatus
	ViewToken          *string
	ViewTokenExpiresAt *time.Time
	PaymentIntentID    *string
	TicketIDs          *[]string
}

// NewID returns a lexically sortable unique identifier.
func NewID() string {
	return ulid.Make().String()
}
