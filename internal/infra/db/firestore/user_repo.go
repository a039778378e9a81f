package firestore

import (
	"context"
	"fmt"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"

	"cloud.google.com/go/firestore"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	client *firestore.Client
}

func NewUserRepo(client *firestore.Client) *userRepo {
	return &userRepo{client: client}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var d userDoc
	if err := getDoc(ctx, r.client.Collection(colUsers).Doc(id), "user", &d); err != nil {
		return nil, err
	}
	return d.toModel(id), nil
}

// FindOneByField accepts the model.UserField* names only.
func (r *userRepo) FindOneByField(ctx context.Context, field, value string) (*model.User, error) {
	switch field {
	case model.UserFieldEmail, model.UserFieldStripeCustomerID:
	default:
		return nil, fmt.Errorf("%w: unsupported user field %q", domain.ErrInvalidArgument, field)
	}
	snap, err := firstDoc(ctx, r.client.Collection(colUsers).Where(field, "==", value), "user", field+"="+value)
	if err != nil {
		return nil, err
	}
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	return d.toModel(snap.Ref.ID), nil
}

func (d userDoc) toModel(id string) *model.User {
	return &model.User{
		ID:               id,
		Email:            d.Email,
		DisplayName:      d.DisplayName,
		StripeCustomerID: d.StripeCustomerID,
		CreatedAt:        d.CreatedAt,
	}
}
