package redis

import (
	"context"
	"fmt"
	"time"

	"ticket-marketplace/internal/domain/ports/adapter"
)

var _ adapter.EventClaims = (*EventClaims)(nil)

const eventKeyPrefix = "webhook:event:"

// EventClaims marks provider event ids as taken so redeliveries are skipped.
type EventClaims struct {
	cache RedisClient
}

func NewEventClaims(cache RedisClient) *EventClaims {
	return &EventClaims{cache: cache}
}

// Claim returns true when id was not claimed before.
func (c *EventClaims) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := c.cache.SetNX(ctx, eventKeyPrefix+id, time.Now().Unix(), ttl)
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", id, err)
	}
	return ok, nil
}

// Release drops the claim so a later delivery can retry.
func (c *EventClaims) Release(ctx context.Context, id string) error {
	return c.cache.Del(ctx, eventKeyPrefix+id)
}
