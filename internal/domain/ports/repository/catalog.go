package repository

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// CatalogRepository reads the records used to enrich ticket notifications.
type CatalogRepository interface {
	FindPerformance(ctx context.Context, id string) (*model.Performance, error)
	FindVenue(ctx context.Context, id string) (*model.Venue, error)
	FindProduction(ctx context.Context, id string) (*model.Production, error)
	FindSeller(ctx context.Context, id string) (*model.Seller, error)
}
