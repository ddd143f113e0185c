package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	repo "github.com/devlinkhq/devlink/internal/domain/repository"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

// AccountService sequences registration, login, and cascading account
// deletion over the user/profile/post repositories.
type AccountService struct {
	Users    repo.UserRepository
	Profiles repo.ProfileRepository
	Posts    repo.PostRepository
	Tokens   *helpers.TokenCodec
	Logger   *logrus.Logger
}

func NewAccountService(users repo.UserRepository, profiles repo.ProfileRepository, posts repo.PostRepository, tokens *helpers.TokenCodec, logger *logrus.Logger) *AccountService {
	return &AccountService{Users: users, Profiles: profiles, Posts: posts, Tokens: tokens, Logger: logger}
}

// AuthResult is a freshly issued token plus the account it asserts.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// Register creates an account and issues its first token. Email
// uniqueness is an exact, case-sensitive match. The avatar URL is
// derived deterministically from the email, the password hashed with
// bcrypt, and only then is the account persisted.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		AvatarURL: helpers.GravatarURL(email),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("token signing failed")
		}
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate checks email/password and issues a token. Unknown email
// and wrong password fail identically.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("token signing failed")
		}
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// CurrentUser resolves the account behind a verified token.
func (s *AccountService) CurrentUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes everything owned by the account: posts first,
// then the profile, then the account row itself. The order is a
// correctness invariant: a crash between steps can only leave rows
// whose owner still exists, never a dangling owner reference. Each
// step completes durably before the next starts.
func (s *AccountService) DeleteAccount(ctx context.Context, ownerID string) error {
	if _, err := s.Users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.Posts.DeleteByOwner(ctx, ownerID); err != nil {
		return err
	}
	if err := s.Profiles.DeleteByOwner(ctx, ownerID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.Users.Delete(ctx, ownerID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", ownerID).Info("account deleted")
	}
	return nil
}
