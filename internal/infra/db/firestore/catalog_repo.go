package firestore

import (
	"context"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"

	"cloud.google.com/go/firestore"
)

var _ repository.CatalogRepository = (*catalogRepo)(nil)

type catalogRepo struct {
	client *firestore.Client
}

func NewCatalogRepo(client *firestore.Client) *catalogRepo {
	return &catalogRepo{client: client}
}

func (r *catalogRepo) FindPerformance(ctx context.Context, id string) (*model.Performance, error) {
	var d performanceDoc
	if err := getDoc(ctx, r.client.Collection(colPerformances).Doc(id), "performance", &d); err != nil {
		return nil, err
	}
	return &model.Performance{
		ID:           id,
		ProductionID: d.ProductionID,
		VenueID:      d.VenueID,
		Date:         d.Date,
		Time:         d.Time,
		StartsAt:     d.StartsAt,
	}, nil
}

func (r *catalogRepo) FindVenue(ctx context.Context, id string) (*model.Venue, error) {
	var d venueRecordDoc
	if err := getDoc(ctx, r.client.Collection(colVenues).Doc(id), "venue", &d); err != nil {
		return nil, err
	}
	return &model.Venue{ID: id, Name: d.Name, Address: d.Address, City: d.City, State: d.State, Zip: d.Zip}, nil
}

func (r *catalogRepo) FindProduction(ctx context.Context, id string) (*model.Production, error) {
	var d productionDoc
	if err := getDoc(ctx, r.client.Collection(colProductions).Doc(id), "production", &d); err != nil {
		return nil, err
	}
	return &model.Production{ID: id, Title: d.Title}, nil
}

func (r *catalogRepo) FindSeller(ctx context.Context, id string) (*model.Seller, error) {
	var d sellerDoc
	if err := getDoc(ctx, r.client.Collection(colSellers).Doc(id), "seller", &d); err != nil {
		return nil, err
	}
	return &model.Seller{ID: id, Name: d.Name, Email: d.Email, LogoURL: d.LogoURL}, nil
}
