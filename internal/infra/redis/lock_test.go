//go:build integration

package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/domain"
)

func newIntegrationClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "localhost:6379"
	}
	c, err := NewClient(context.Background(), &config.RedisConfig{URL: url})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	c := newIntegrationClient(t)
	l := NewLocker(c)
	l.attempts, l.backoff = 2, 10*time.Millisecond
	key := "lock:payment_intent:test-" + time.Now().Format("150405.000000")

	token, err := l.TryLock(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("expected lock, got %v", err)
	}

	if _, err := l.TryLock(ctx, key, time.Minute); !errors.Is(err, domain.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	if err := l.Unlock(ctx, key, "not-the-owner"); err != nil {
		t.Fatalf("foreign unlock: %v", err)
	}
	if _, err := c.Get(ctx, key); IsMiss(err) {
		t.Fatal("a foreign token must not release the lock")
	}

	if err := l.Unlock(ctx, key, token); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := c.Get(ctx, key); !IsMiss(err) {
		t.Fatalf("expected key removed, got %v", err)
	}
}
