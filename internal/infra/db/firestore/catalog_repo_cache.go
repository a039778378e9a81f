package firestore

import (
	"context"
	"encoding/json"
	"time"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"
	"ticket-marketplace/internal/infra/metrics"
	red "ticket-marketplace/internal/infra/redis"
)

var _ repository.CatalogRepository = (*catalogRepoCacheDecorator)(nil)

// catalogRepoCacheDecorator keeps catalog records in Redis. Catalog records change
// rarely and are read once per notification. Misses are not cached.
type catalogRepoCacheDecorator struct {
	inner repository.CatalogRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCatalogRepoCacheDecorator(inner repository.CatalogRepository, cache red.RedisClient, ttl time.Duration) repository.CatalogRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &catalogRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *catalogRepoCacheDecorator) FindPerformance(ctx context.Context, id string) (*model.Performance, error) {
	return cached(ctx, d, "performance", id, d.inner.FindPerformance)
}

func (d *catalogRepoCacheDecorator) FindVenue(ctx context.Context, id string) (*model.Venue, error) {
	return cached(ctx, d, "venue", id, d.inner.FindVenue)
}

func (d *catalogRepoCacheDecorator) FindProduction(ctx context.Context, id string) (*model.Production, error) {
	return cached(ctx, d, "production", id, d.inner.FindProduction)
}

func (d *catalogRepoCacheDecorator) FindSeller(ctx context.Context, id string) (*model.Seller, error) {
	return cached(ctx, d, "seller", id, d.inner.FindSeller)
}

func cached[T any](ctx context.Context, d *catalogRepoCacheDecorator, kind, id string, load func(context.Context, string) (*T, error)) (*T, error) {
	key := "catalog:" + kind + ":" + id
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if json.Unmarshal([]byte(val), &v) == nil {
			metrics.IncCacheRequest(kind, "hit")
			return &v, nil
		}
	case !red.IsMiss(err):
		metrics.IncCacheRequest(kind, "error")
	}

	metrics.IncCacheRequest(kind, "miss")
	v, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(v); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return v, nil
}
