package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, text, author_name, author_avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.UserID, p.Text, p.AuthorName, p.AuthorAvatar)
	return row.Scan(&p.ID, &p.CreatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	p := &entity.Post{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, text, author_name, author_avatar, created_at
		FROM posts
		WHERE id = $1
	`, id)
	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.AuthorName, &p.AuthorAvatar, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) ListAll(ctx context.Context) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, text, author_name, author_avatar, created_at
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Post
	for rows.Next() {
		p := &entity.Post{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.AuthorName, &p.AuthorAvatar, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every post owned by userID. Zero rows is fine;
// the cascade must succeed for owners who never posted.
func (r *PostRepository) DeleteByOwner(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	return err
}

var _ repository.PostRepository = (*PostRepository)(nil)
