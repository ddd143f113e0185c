package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

func newAccountService(rec *opsRecorder) (*AccountService, *memUserRepo, *memProfileRepo, *memPostRepo) {
	users := newMemUserRepo(rec)
	profiles := newMemProfileRepo(rec)
	posts := newMemPostRepo(rec)
	svc := NewAccountService(users, profiles, posts, helpers.NewTokenCodec("test-secret", time.Hour), nil)
	return svc, users, profiles, posts
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, reg.User)
	assert.NotEmpty(t, reg.User.ID)
	assert.NotEmpty(t, reg.Token)
	assert.Contains(t, reg.User.AvatarURL, "gravatar.com/avatar/")
	assert.NotEqual(t, "hunter22", reg.User.Password, "password must be stored hashed")

	// the issued token asserts the new account
	claims, err := svc.Tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.User.ID)

	auth, err := svc.Authenticate(ctx, "ada@devlink.local", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, auth.User.ID)
	assert.NotEmpty(t, auth.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ada@devlink.local", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterEmailMatchIsCaseSensitive(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Ada", "Ada@devlink.local", "hunter22")
	assert.NoError(t, err)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)

	_, errUnknown := svc.Authenticate(ctx, "nobody@devlink.local", "hunter22")
	_, errWrongPw := svc.Authenticate(ctx, "ada@devlink.local", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestCurrentUser(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)

	u, err := svc.CurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@devlink.local", u.Email)

	_, err = svc.CurrentUser(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccountCascadeOrder(t *testing.T) {
	rec := &opsRecorder{}
	svc, users, profiles, posts := newAccountService(rec)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)
	id := reg.User.ID

	_, err = profiles.Upsert(ctx, id, func(p *entity.Profile) { p.Status = "Developer" })
	require.NoError(t, err)
	require.NoError(t, posts.Create(ctx, &entity.Post{UserID: id, Text: "hello"}))
	require.NoError(t, posts.Create(ctx, &entity.Post{UserID: id, Text: "again"}))

	require.NoError(t, svc.DeleteAccount(ctx, id))

	assert.Equal(t, []string{"posts:delete", "profile:delete", "user:delete"}, rec.ops)
	_, err = users.GetByID(ctx, id)
	assert.Error(t, err)
	_, err = profiles.GetByOwner(ctx, id)
	assert.Error(t, err)
	all, err := posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteAccountWithoutProfile(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ada", "ada@devlink.local", "hunter22")
	require.NoError(t, err)

	// never created a profile or posts; the cascade must still succeed
	assert.NoError(t, svc.DeleteAccount(ctx, reg.User.ID))
}

func TestDeleteAccountUnknownOwner(t *testing.T) {
	svc, _, _, _ := newAccountService(nil)
	err := svc.DeleteAccount(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}
