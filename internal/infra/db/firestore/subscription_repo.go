package firestore

import (
	"context"
	"fmt"
	"time"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"

	"cloud.google.com/go/firestore"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

// subscriptionRepo keeps one document per user, keyed by user id.
type subscriptionRepo struct {
	client *firestore.Client
	now    func() time.Time
}

func NewSubscriptionRepo(client *firestore.Client) *subscriptionRepo {
	return &subscriptionRepo{client: client, now: time.Now}
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	var d subscriptionDoc
	if err := getDoc(ctx, r.client.Collection(colSubscriptions).Doc(userID), "subscription", &d); err != nil {
		return nil, err
	}
	return d.toModel(userID), nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, s *model.Subscription) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = r.now()
	}
	if _, err := r.client.Collection(colSubscriptions).Doc(s.UserID).Set(ctx, toSubscriptionDoc(s)); err != nil {
		return fmt.Errorf("upsert subscription of %s: %w", s.UserID, err)
	}
	return nil
}

func (r *subscriptionRepo) Patch(ctx context.Context, userID string, p model.SubscriptionPatch) error {
	fields := subscriptionFields(p, r.now())
	fields["userId"] = userID
	if _, err := r.client.Collection(colSubscriptions).Doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("patch subscription of %s: %w", userID, err)
	}
	return nil
}

// subscriptionFields converts a patch into a merge map; updatedAt is always set.
func subscriptionFields(p model.SubscriptionPatch, now time.Time) map[string]interface{} {
	m := map[string]interface{}{"updatedAt": now}
	if p.Status != nil {
		m["status"] = string(*p.Status)
	}
	if p.CurrentPeriodStart != nil {
		m["currentPeriodStart"] = *p.CurrentPeriodStart
	}
	if p.CurrentPeriodEnd != nil {
		m["currentPeriodEnd"] = *p.CurrentPeriodEnd
	}
	if p.CancelAtPeriodEnd != nil {
		m["cancelAtPeriodEnd"] = *p.CancelAtPeriodEnd
	}
	if p.CanceledAt != nil {
		m["canceledAt"] = *p.CanceledAt
	}
	if p.LastPaymentDate != nil {
		m["lastPaymentDate"] = *p.LastPaymentDate
	}
	if p.LastPaymentFailedDate != nil {
		m["lastPaymentFailedDate"] = *p.LastPaymentFailedDate
	}
	return m
}
