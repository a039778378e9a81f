package adapter

import (
	"context"
	"time"
)

// EventClaims records which provider event ids are already being handled.
type EventClaims interface {
	// Claim returns false when the id was claimed before and the claim has not expired.
	Claim(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// Locker is a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
