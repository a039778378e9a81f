package repository

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// TicketRepository stores tickets under their order.
type TicketRepository interface {
	Save(ctx context.Context, orderID string, ticket *model.Ticket) error
	ListByOrder(ctx context.Context, orderID string) ([]*model.Ticket, error)
}
