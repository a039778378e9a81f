package adapter

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// EventVerifier authenticates and decodes an inbound provider notification.
type EventVerifier interface {
	Verify(payload []byte, signature string) (*model.Event, error)
}

// PaymentProvider is the hex port for the payment provider API.
// An empty account reads from the platform account.
type PaymentProvider interface {
	GetPaymentIntent(ctx context.Context, id, account string) (*model.PaymentIntent, error)
	UpdatePaymentIntentMetadata(ctx context.Context, id string, fields map[string]string, account string) error
	GetCustomer(ctx context.Context, id, account string) (*model.Customer, error)
	GetSubscription(ctx context.Context, id, account string) (*model.SubscriptionSnapshot, error)
}
