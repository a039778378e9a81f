package firestore

import (
	"context"
	"fmt"
	"time"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"

	"cloud.google.com/go/firestore"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct {
	client *firestore.Client
	now    func() time.Time
}

func NewOrderRepo(client *firestore.Client) *orderRepo {
	return &orderRepo{client: client, now: time.Now}
}

func (r *orderRepo) Save(ctx context.Context, o *model.Order) error {
	if _, err := r.client.Collection(colOrders).Doc(o.ID).Set(ctx, toOrderDoc(o)); err != nil {
		return fmt.Errorf("save order %s: %w", o.ID, err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var d orderDoc
	if err := getDoc(ctx, r.client.Collection(colOrders).Doc(id), "order", &d); err != nil {
		return nil, err
	}
	return d.toModel(id), nil
}

func (r *orderRepo) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	q := r.client.Collection(colOrders).Where("paymentIntentId", "==", paymentIntentID)
	snap, err := firstDoc(ctx, q, "order", "paymentIntentId="+paymentIntentID)
	if err != nil {
		return nil, err
	}
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
	}
	return d.toModel(snap.Ref.ID), nil
}

func (r *orderRepo) Update(ctx context.Context, id string, p model.OrderPatch) error {
	updates := orderUpdates(p, r.now())
	if _, err := r.client.Collection(colOrders).Doc(id).Update(ctx, updates); err != nil {
		return mapErr(err, "order", id)
	}
	return nil
}

// orderUpdates converts a patch into field updates; updatedAt is always set.
func orderUpdates(p model.OrderPatch, now time.Time) []firestore.Update {
	var ups []firestore.Update
	if p.Status != nil {
		ups = append(ups, firestore.Update{Path: "status", Value: string(*p.Status)})
	}
	if p.PaymentStatus != nil {
		ups = append(ups, firestore.Update{Path: "paymentStatus", Value: string(*p.PaymentStatus)})
	}
	if p.ViewToken != nil {
		ups = append(ups, firestore.Update{Path: "viewToken", Value: *p.ViewToken})
	}
	if p.ViewTokenExpiresAt != nil {
		ups = append(ups, firestore.Update{Path: "viewTokenExpiresAt", Value: *p.ViewTokenExpiresAt})
	}
	if p.PaymentIntentID != nil {
		ups = append(ups, firestore.Update{Path: "paymentIntentId", Value: *p.PaymentIntentID})
	}
	if p.TicketIDs != nil {
		ids := *p.TicketIDs
		if ids == nil {
			ids = []string{}
		}
		ups = append(ups, firestore.Update{Path: "ticketIds", Value: ids})
	}
	return append(ups, firestore.Update{Path: "updatedAt", Value: now})
}
