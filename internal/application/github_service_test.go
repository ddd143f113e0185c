package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGithubReposPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"hello-world"}]`))
	}))
	defer upstream.Close()

	svc := NewGithubService(upstream.URL, nil, time.Minute, nil)
	body, err := svc.Repos(context.Background(), "octocat")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"hello-world"}]`, string(body))
}

func TestGithubReposUnknownUser(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	svc := NewGithubService(upstream.URL, nil, time.Minute, nil)
	_, err := svc.Repos(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGithubReposRejectsInvalidUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer upstream.Close()

	svc := NewGithubService(upstream.URL, nil, time.Minute, nil)
	_, err := svc.Repos(context.Background(), "octocat")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGithubReposEscapesUsername(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	svc := NewGithubService(upstream.URL, nil, time.Minute, nil)
	_, err := svc.Repos(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/users/a%2Fb/repos", gotPath)
}
