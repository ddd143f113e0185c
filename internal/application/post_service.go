package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	repo "github.com/devlinkhq/devlink/internal/domain/repository"
)

// PostService is intentionally thin; posts exist so account deletion
// has dependents to cascade over.
type PostService struct {
	Posts  repo.PostRepository
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewPostService(posts repo.PostRepository, users repo.UserRepository, logger *logrus.Logger) *PostService {
	return &PostService{Posts: posts, Users: users, Logger: logger}
}

// Create stores a post stamped with the author's display fields.
func (s *PostService) Create(ctx context.Context, ownerID, text string) (*entity.Post, error) {
	u, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := &entity.Post{
		UserID:       u.ID,
		Text:         text,
		AuthorName:   u.Name,
		AuthorAvatar: u.AvatarURL,
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) ListAll(ctx context.Context) ([]*entity.Post, error) {
	return s.Posts.ListAll(ctx)
}

// Delete removes a post after checking the caller owns it.
func (s *PostService) Delete(ctx context.Context, ownerID, postID string) error {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.UserID != ownerID {
		return ErrNotOwner
	}
	return s.Posts.DeleteByID(ctx, postID)
}
