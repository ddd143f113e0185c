package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/internal/domain/repository"
)

func strp(s string) *string { return &s }

// In-memory fakes for the repository interfaces. They share an
// optional ops recorder so tests can assert call ordering.

type opsRecorder struct {
	ops []string
}

func (r *opsRecorder) record(op string) {
	if r != nil {
		r.ops = append(r.ops, op)
	}
}

type memUserRepo struct {
	rec   *opsRecorder
	users map[string]*entity.User // by id
}

func newMemUserRepo(rec *opsRecorder) *memUserRepo {
	return &memUserRepo{rec: rec, users: map[string]*entity.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	m.rec.record("user:delete")
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memProfileRepo struct {
	rec      *opsRecorder
	profiles map[string]*entity.Profile // by owner id
}

func newMemProfileRepo(rec *opsRecorder) *memProfileRepo {
	return &memProfileRepo{rec: rec, profiles: map[string]*entity.Profile{}}
}

func cloneProfile(p *entity.Profile) *entity.Profile {
	b, _ := json.Marshal(p)
	cp := &entity.Profile{}
	_ = json.Unmarshal(b, cp)
	// json round-trip loses nothing we assert on, but keep identity fields exact
	cp.ID = p.ID
	cp.UserID = p.UserID
	cp.OwnerName = p.OwnerName
	cp.OwnerAvatar = p.OwnerAvatar
	return cp
}

func (m *memProfileRepo) GetByOwner(_ context.Context, userID string) (*entity.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (m *memProfileRepo) ListAll(_ context.Context) ([]*entity.Profile, error) {
	out := make([]*entity.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, cloneProfile(p))
	}
	return out, nil
}

func (m *memProfileRepo) Upsert(_ context.Context, userID string, mutate func(*entity.Profile)) (*entity.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		p = &entity.Profile{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	} else {
		p = cloneProfile(p)
	}
	mutate(p)
	p.UpdatedAt = time.Now()
	m.profiles[userID] = p
	return cloneProfile(p), nil
}

func (m *memProfileRepo) UpdateByOwner(_ context.Context, userID string, mutate func(*entity.Profile) error) (*entity.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProfile(p)
	if err := mutate(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	m.profiles[userID] = p
	return cloneProfile(p), nil
}

func (m *memProfileRepo) DeleteByOwner(_ context.Context, userID string) error {
	m.rec.record("profile:delete")
	if _, ok := m.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.profiles, userID)
	return nil
}

type memPostRepo struct {
	rec   *opsRecorder
	posts map[string]*entity.Post
}

func newMemPostRepo(rec *opsRecorder) *memPostRepo {
	return &memPostRepo{rec: rec, posts: map[string]*entity.Post{}}
}

func (m *memPostRepo) Create(_ context.Context, p *entity.Post) error {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memPostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPostRepo) ListAll(_ context.Context) ([]*entity.Post, error) {
	out := make([]*entity.Post, 0, len(m.posts))
	for _, p := range m.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPostRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memPostRepo) DeleteByOwner(_ context.Context, userID string) error {
	m.rec.record("posts:delete")
	for id, p := range m.posts {
		if p.UserID == userID {
			delete(m.posts, id)
		}
	}
	return nil
}

var (
	_ repository.UserRepository    = (*memUserRepo)(nil)
	_ repository.ProfileRepository = (*memProfileRepo)(nil)
	_ repository.PostRepository    = (*memPostRepo)(nil)
)
