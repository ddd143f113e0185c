package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlinkhq/devlink/internal/application"
	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/internal/domain/repository"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/helpers"
	"github.com/devlinkhq/devlink/pkg/validation"
)

// Minimal in-memory repositories backing the wired-router tests.

type memStore struct {
	users    map[string]*entity.User
	profiles map[string]*entity.Profile
	posts    map[string]*entity.Post
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*entity.User{},
		profiles: map[string]*entity.Profile{},
		posts:    map[string]*entity.Post{},
	}
}

type memUsers struct{ s *memStore }

func (m memUsers) Create(_ context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	cp := *u
	m.s.users[u.ID] = &cp
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.s.users, id)
	return nil
}

type memProfiles struct{ s *memStore }

func (m memProfiles) GetByOwner(_ context.Context, userID string) (*entity.Profile, error) {
	p, ok := m.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memProfiles) ListAll(_ context.Context) ([]*entity.Profile, error) {
	out := make([]*entity.Profile, 0, len(m.s.profiles))
	for _, p := range m.s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m memProfiles) Upsert(_ context.Context, userID string, mutate func(*entity.Profile)) (*entity.Profile, error) {
	p, ok := m.s.profiles[userID]
	if !ok {
		p = &entity.Profile{ID: uuid.NewString(), UserID: userID}
	}
	mutate(p)
	p.UpdatedAt = time.Now()
	m.s.profiles[userID] = p
	cp := *p
	return &cp, nil
}

func (m memProfiles) UpdateByOwner(_ context.Context, userID string, mutate func(*entity.Profile) error) (*entity.Profile, error) {
	p, ok := m.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := mutate(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m memProfiles) DeleteByOwner(_ context.Context, userID string) error {
	if _, ok := m.s.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.s.profiles, userID)
	return nil
}

type memPosts struct{ s *memStore }

func (m memPosts) Create(_ context.Context, p *entity.Post) error {
	p.ID = uuid.NewString()
	cp := *p
	m.s.posts[p.ID] = &cp
	return nil
}

func (m memPosts) GetByID(_ context.Context, id string) (*entity.Post, error) {
	p, ok := m.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memPosts) ListAll(_ context.Context) ([]*entity.Post, error) {
	out := make([]*entity.Post, 0, len(m.s.posts))
	for _, p := range m.s.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m memPosts) DeleteByID(_ context.Context, id string) error {
	if _, ok := m.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.s.posts, id)
	return nil
}

func (m memPosts) DeleteByOwner(_ context.Context, userID string) error {
	for id, p := range m.s.posts {
		if p.UserID == userID {
			delete(m.s.posts, id)
		}
	}
	return nil
}

// testRouter wires the real handlers over in-memory repositories with
// the same routes the modules register.
func testRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newMemStore()
	tokens := helpers.NewTokenCodec("test-secret", time.Hour)

	accounts := application.NewAccountService(memUsers{store}, memProfiles{store}, memPosts{store}, tokens, logger)
	profiles := application.NewProfileService(memProfiles{store}, logger, nil, "")
	github := application.NewGithubService("http://127.0.0.1:0", nil, time.Minute, logger)

	ah := NewAccountHandler(accounts, logger)
	ph := NewProfileHandler(profiles, github, logger)

	r := gin.New()
	auth := middleware.Auth(tokens)
	api := r.Group("/api")
	api.POST("/users", ah.Register)
	api.POST("/auth", ah.Login)
	api.GET("/auth", auth, ah.Me)
	api.DELETE("/profile", auth, ah.Delete)
	api.GET("/profile", ph.List)
	api.GET("/profile/user/:user_id", ph.GetByUser)
	api.GET("/profile/me", auth, ph.Me)
	api.POST("/profile", auth, ph.Upsert)
	api.PUT("/profile/experience", auth, ph.AddExperience)
	api.DELETE("/profile/experience/:exp_id", auth, ph.RemoveExperience)
	api.PUT("/profile/education", auth, ph.AddEducation)
	api.DELETE("/profile/education/:edu_id", auth, ph.RemoveEducation)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func registerAndLogin(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/users", "", gin.H{
		"name": "Ada", "email": email, "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decodeData(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterValidation(t *testing.T) {
	r, _ := testRouter(t)

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"missing name", gin.H{"email": "a@b.co", "password": "hunter22"}},
		{"bad email", gin.H{"name": "Ada", "email": "not-an-email", "password": "hunter22"}},
		{"short password", gin.H{"name": "Ada", "email": "a@b.co", "password": "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/users", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterLoginMeFlow(t *testing.T) {
	r, _ := testRouter(t)
	registerAndLogin(t, r, "ada@devlink.local")

	w := doJSON(t, r, http.MethodPost, "/api/auth", "", gin.H{
		"email": "ada@devlink.local", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, r, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeData(t, w)
	assert.Equal(t, "ada@devlink.local", me["email"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := testRouter(t)
	registerAndLogin(t, r, "ada@devlink.local")

	wrongPw := doJSON(t, r, http.MethodPost, "/api/auth", "", gin.H{
		"email": "ada@devlink.local", "password": "wrong-password",
	})
	unknown := doJSON(t, r, http.MethodPost, "/api/auth", "", gin.H{
		"email": "nobody@devlink.local", "password": "hunter22",
	})

	assert.Equal(t, http.StatusBadRequest, wrongPw.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Contains(t, wrongPw.Body.String(), "invalid credentials")
	assert.Contains(t, unknown.Body.String(), "invalid credentials")
}

func TestProfileLifecycleOverHTTP(t *testing.T) {
	r, _ := testRouter(t)
	token := registerAndLogin(t, r, "ada@devlink.local")

	// create via upsert
	w := doJSON(t, r, http.MethodPost, "/api/profile", token, gin.H{
		"status": "Developer",
		"skills": "go, rust , ",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeData(t, w)
	assert.Equal(t, []any{"go", "rust"}, p["skills"])

	// partial update keeps existing fields
	w = doJSON(t, r, http.MethodPost, "/api/profile", token, gin.H{"company": "Acme"})
	require.Equal(t, http.StatusOK, w.Code)
	p = decodeData(t, w)
	assert.Equal(t, "Acme", p["company"])
	assert.Equal(t, "Developer", p["status"])

	// add two experience entries, newest first
	exp := gin.H{"title": "first", "company": "a", "from": "2020-01-01T00:00:00Z"}
	w = doJSON(t, r, http.MethodPut, "/api/profile/experience", token, exp)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	exp["title"] = "second"
	w = doJSON(t, r, http.MethodPut, "/api/profile/experience", token, exp)
	require.Equal(t, http.StatusOK, w.Code)

	p = decodeData(t, w)
	entries, _ := p["experience"].([]any)
	require.Len(t, entries, 2)
	head, _ := entries[0].(map[string]any)
	assert.Equal(t, "second", head["title"])

	// delete the newest entry
	id, _ := head["id"].(string)
	require.NotEmpty(t, id)
	w = doJSON(t, r, http.MethodDelete, "/api/profile/experience/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p = decodeData(t, w)
	entries, _ = p["experience"].([]any)
	require.Len(t, entries, 1)

	// unknown entry id still succeeds
	w = doJSON(t, r, http.MethodDelete, "/api/profile/experience/not-there", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExperienceValidation(t *testing.T) {
	r, _ := testRouter(t)
	token := registerAndLogin(t, r, "ada@devlink.local")

	w := doJSON(t, r, http.MethodPut, "/api/profile/experience", token, gin.H{"title": "dev"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileMutationWithoutProfile(t *testing.T) {
	r, _ := testRouter(t)
	token := registerAndLogin(t, r, "ada@devlink.local")

	w := doJSON(t, r, http.MethodPut, "/api/profile/education", token, gin.H{
		"school": "MIT", "degree": "BSc", "fieldofstudy": "CS", "from": "2015-09-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "there is no profile for this user")
}

func TestPublicProfileRoutes(t *testing.T) {
	r, store := testRouter(t)
	token := registerAndLogin(t, r, "ada@devlink.local")
	w := doJSON(t, r, http.MethodPost, "/api/profile", token, gin.H{"status": "Developer"})
	require.Equal(t, http.StatusOK, w.Code)

	var ownerID string
	for id := range store.users {
		ownerID = id
	}

	w = doJSON(t, r, http.MethodGet, "/api/profile/user/"+ownerID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/profile/user/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAccountOverHTTP(t *testing.T) {
	r, store := testRouter(t)
	token := registerAndLogin(t, r, "ada@devlink.local")
	w := doJSON(t, r, http.MethodPost, "/api/profile", token, gin.H{"status": "Developer"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, store.users)
	assert.Empty(t, store.profiles)

	// the account is gone; the still-unexpired token resolves nobody
	w = doJSON(t, r, http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/profile/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no credential supplied")

	w = doJSON(t, r, http.MethodDelete, "/api/profile", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "credential not valid")
}
