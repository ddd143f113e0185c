package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/internal/domain/repository"
)

// ProfileRepository stores the aggregate in a single row: scalar
// columns, skills as text[], and the social/experience/education
// sub-documents as jsonb. Mutations lock the row (SELECT ... FOR
// UPDATE) inside one transaction, so every repository call is a single
// atomic read-modify-write.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileSelect = `
	SELECT p.id, p.user_id, p.company, p.website, p.location, p.status, p.bio,
	       p.github_username, p.skills, p.social, p.experience, p.education,
	       p.created_at, p.updated_at, u.name, u.avatar_url
	FROM profiles p
	JOIN users u ON u.id = p.user_id
`

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	var social, experience, education []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Status, &p.Bio,
		&p.GithubUsername, &p.Skills, &social, &experience, &education,
		&p.CreatedAt, &p.UpdatedAt, &p.OwnerName, &p.OwnerAvatar); err != nil {
		return nil, err
	}
	if err := decodeDocs(p, social, experience, education); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeDocs(p *entity.Profile, social, experience, education []byte) error {
	if len(social) > 0 {
		if err := json.Unmarshal(social, &p.Social); err != nil {
			return err
		}
	}
	if len(experience) > 0 {
		if err := json.Unmarshal(experience, &p.Experience); err != nil {
			return err
		}
	}
	if len(education) > 0 {
		if err := json.Unmarshal(education, &p.Education); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProfileRepository) GetByOwner(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, profileSelect+`WHERE p.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) ListAll(ctx context.Context) ([]*entity.Profile, error) {
	rows, err := r.pool.Query(ctx, profileSelect+`ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert creates the row when absent (create-if-absent is the
// aggregate's lifecycle rule), then applies mutate under the row lock.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, mutate func(*entity.Profile)) (*entity.Profile, error) {
	return r.withLockedRow(ctx, userID, true, func(p *entity.Profile) error {
		mutate(p)
		return nil
	})
}

// UpdateByOwner applies mutate to an existing aggregate; ErrNotFound
// when the owner has no profile.
func (r *ProfileRepository) UpdateByOwner(ctx context.Context, userID string, mutate func(*entity.Profile) error) (*entity.Profile, error) {
	return r.withLockedRow(ctx, userID, false, mutate)
}

func (r *ProfileRepository) withLockedRow(ctx context.Context, userID string, createIfAbsent bool, mutate func(*entity.Profile) error) (*entity.Profile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if createIfAbsent {
		if _, err := tx.Exec(ctx, `
			INSERT INTO profiles (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO NOTHING
		`, userID); err != nil {
			return nil, err
		}
	}

	p := &entity.Profile{}
	var social, experience, education []byte
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, company, website, location, status, bio,
		       github_username, skills, social, experience, education,
		       created_at, updated_at
		FROM profiles
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Status, &p.Bio,
		&p.GithubUsername, &p.Skills, &social, &experience, &education,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := decodeDocs(p, social, experience, education); err != nil {
		return nil, err
	}

	if err := mutate(p); err != nil {
		return nil, err
	}

	socialB, err := json.Marshal(p.Social)
	if err != nil {
		return nil, err
	}
	expB, err := json.Marshal(p.Experience)
	if err != nil {
		return nil, err
	}
	eduB, err := json.Marshal(p.Education)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE profiles
		SET company = $1, website = $2, location = $3, status = $4, bio = $5,
		    github_username = $6, skills = $7, social = $8, experience = $9,
		    education = $10, updated_at = $11
		WHERE user_id = $12
	`, p.Company, p.Website, p.Location, p.Status, p.Bio,
		p.GithubUsername, p.Skills, socialB, expB, eduB, p.UpdatedAt, userID); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `SELECT name, avatar_url FROM users WHERE id = $1`, userID).
		Scan(&p.OwnerName, &p.OwnerAvatar); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) DeleteByOwner(ctx context.Context, userID string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
