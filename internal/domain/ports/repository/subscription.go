package repository

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// SubscriptionRepository is the port for per-user subscription mirrors.
type SubscriptionRepository interface {
	FindByUser(ctx context.Context, userID string) (*model.Subscription, error)
	// Upsert merges the full record into the user's document, creating it if needed.
	Upsert(ctx context.Context, sub *model.Subscription) error
	// Patch overlays the non-nil fields onto the user's document, creating it if needed.
	Patch(ctx context.Context, userID string, patch model.SubscriptionPatch) error
}
