package repository

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// UserRepository is the read-only user directory.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindOneByField returns the first user whose field equals value.
	FindOneByField(ctx context.Context, field, value string) (*model.User, error)
}
