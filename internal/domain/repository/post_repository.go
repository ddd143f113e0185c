package repository

import (
	"context"

	"github.com/devlinkhq/devlink/internal/domain/entity"
)

// PostRepository persists posts. Only the ownership facts matter to
// the account lifecycle; the rest is plain CRUD.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	ListAll(ctx context.Context) ([]*entity.Post, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, userID string) error
}
