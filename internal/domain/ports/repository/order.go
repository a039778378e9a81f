package repository

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// OrderRepository is the port for order documents.
type OrderRepository interface {
	// Save writes the full order under order.ID.
	Save(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	// FindByPaymentIntent returns the order joined to a provider payment intent.
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Order, error)
	Update(ctx context.Context, id string, patch model.OrderPatch) error
}
