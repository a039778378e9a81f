package firestore

import (
	"context"
	"fmt"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names.
const (
	colOrders        = "orders"
	colTickets       = "tickets" // subcollection of orders
	colUsers         = "users"
	colSubscriptions = "subscriptions"
	colPerformances  = "performances"
	colVenues        = "venues"
	colProductions   = "productions"
	colSellers       = "sellers"
)

// NewClient opens a Firestore client. FIRESTORE_EMULATOR_HOST is honored by the SDK.
func NewClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return c, nil
}

// getDoc loads ref into dst, mapping a missing document to domain.NotFoundError.
func getDoc(ctx context.Context, ref *firestore.DocumentRef, kind string, dst interface{}) error {
	snap, err := ref.Get(ctx)
	if err != nil {
		return mapErr(err, kind, ref.ID)
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", kind, ref.ID, err)
	}
	return nil
}

// firstDoc returns the first document of q or a NotFoundError keyed by what.
func firstDoc(ctx context.Context, q firestore.Query, kind, what string) (*firestore.DocumentSnapshot, error) {
	it := q.Limit(1).Documents(ctx)
	defer it.Stop()
	snap, err := it.Next()
	if err == iterator.Done {
		return nil, domain.NewNotFound(kind, what)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", kind, what, err)
	}
	return snap, nil
}

func mapErr(err error, kind, id string) error {
	if status.Code(err) == codes.NotFound {
		return domain.NewNotFound(kind, id)
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}
