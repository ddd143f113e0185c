package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/pkg/helpers"
)

// GithubService proxies the upstream repository-listing API. The
// upstream document passes through untouched; a non-success status
// maps to ErrNotFound. Successful responses are cached in Redis.
type GithubService struct {
	Base     string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

func NewGithubService(base string, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *GithubService {
	return &GithubService{
		Base:     base,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Logger:   logger,
	}
}

func githubCacheKey(username string) string {
	return "gh:repos:" + username
}

// Repos returns the user's five most recently created public
// repositories as raw upstream JSON.
func (s *GithubService) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	key := githubCacheKey(username)
	if s.Redis != nil {
		var cached json.RawMessage
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	u := s.Base + "/users/" + url.PathEscape(username) + "/repos?per_page=5&sort=created:asc"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"username": username, "status": res.StatusCode}).Debug("github upstream non-success")
		}
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, ErrNotFound
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, json.RawMessage(body), s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("github cache write failed")
		}
	}
	return body, nil
}
