package adapter

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// TicketSender delivers a receipt with tickets to a customer.
type TicketSender interface {
	Send(ctx context.Context, msg *model.TicketMessage) error
}
