package repository

import (
	"context"

	"github.com/devlinkhq/devlink/internal/domain/entity"
)

// ProfileRepository persists the profile aggregate. Upsert and
// UpdateByOwner apply the given mutation under a per-row lock so each
// call is a single atomic read-modify-write; concurrent mutations of
// the same profile cannot lose updates.
type ProfileRepository interface {
	// GetByOwner returns the aggregate with owner display fields
	// resolved, or ErrNotFound.
	GetByOwner(ctx context.Context, userID string) (*entity.Profile, error)
	// ListAll returns every aggregate with owner display fields resolved.
	ListAll(ctx context.Context) ([]*entity.Profile, error)
	// Upsert creates an empty aggregate for userID when none exists,
	// then applies mutate and persists the result atomically.
	Upsert(ctx context.Context, userID string, mutate func(*entity.Profile)) (*entity.Profile, error)
	// UpdateByOwner applies mutate to an existing aggregate atomically;
	// ErrNotFound when no aggregate exists for userID.
	UpdateByOwner(ctx context.Context, userID string, mutate func(*entity.Profile) error) (*entity.Profile, error)
	DeleteByOwner(ctx context.Context, userID string) error
}
