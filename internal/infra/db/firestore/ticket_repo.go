package firestore

import (
	"context"
	"fmt"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"

	"cloud.google.com/go/firestore"
)

var _ repository.TicketRepository = (*ticketRepo)(nil)

// ticketRepo stores tickets under orders/{orderId}/tickets.
type ticketRepo struct {
	client *firestore.Client
}

func NewTicketRepo(client *firestore.Client) *ticketRepo {
	return &ticketRepo{client: client}
}

func (r *ticketRepo) col(orderID string) *firestore.CollectionRef {
	return r.client.Collection(colOrders).Doc(orderID).Collection(colTickets)
}

func (r *ticketRepo) Save(ctx context.Context, orderID string, t *model.Ticket) error {
	if _, err := r.col(orderID).Doc(t.ID).Set(ctx, toTicketDoc(t)); err != nil {
		return fmt.Errorf("save ticket %s of order %s: %w", t.ID, orderID, err)
	}
	return nil
}

func (r *ticketRepo) ListByOrder(ctx context.Context, orderID string) ([]*model.Ticket, error) {
	snaps, err := r.col(orderID).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list tickets of order %s: %w", orderID, err)
	}
	out := make([]*model.Ticket, 0, len(snaps))
	for _, s := range snaps {
		var d ticketDoc
		if err := s.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode ticket %s: %w", s.Ref.ID, err)
		}
		out = append(out, d.toModel(s.Ref.ID))
	}
	return out, nil
}
