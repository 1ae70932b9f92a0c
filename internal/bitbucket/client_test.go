package bitbucket_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
)

func newTestClient(t *testing.T, handler http.Handler, opts *bitbucket.ClientOptions) *bitbucket.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	if opts == nil {
		opts = &bitbucket.ClientOptions{}
	}
	opts.HTTPClient = srv.Client()
	if opts.Log == nil {
		opts.Log = silog.Nop()
	}

	client, err := bitbucket.NewClient(srv.URL, opts)
	require.NoError(t, err)
	return client
}

func TestNewClient_badURL(t *testing.T) {
	tests := []struct {
		name string
		give string
	}{
		{name: "Relative", give: "bitbucket.example.com"},
		{name: "NoHost", give: "https://"},
		{name: "Malformed", give: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bitbucket.NewClient(tt.give, nil)
			assert.Error(t, err)
		})
	}
}

func TestClient_requestShape(t *testing.T) {
	var got struct {
		method, path, query string
		auth, agent, accept string
		contentType         string
		body                map[string]any
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.agent = r.Header.Get("User-Agent")
		got.accept = r.Header.Get("Accept")
		got.contentType = r.Header.Get("Content-Type")
		if r.ContentLength > 0 {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"slug":"my-repo","name":"My Repo","forkable":true}`)
	}), &bitbucket.ClientOptions{
		Token: &bitbucket.AuthenticationToken{
			AuthType:    bitbucket.AuthTypePersonalAccessToken,
			AccessToken: "my-token",
		},
		UserAgent: "bbs-test",
	})

	repo, err := client.Repositories().Create(t.Context(), "PRJ", &bitbucket.CreateRepository{
		Name:     "My Repo",
		Forkable: true,
	})
	require.NoError(t, err)
	assert.Empty(t, repo.Errors)
	assert.Equal(t, "my-repo", repo.Slug)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/rest/api/1.0/projects/PRJ/repos", got.path)
	assert.Equal(t, "Bearer my-token", got.auth)
	assert.Equal(t, "bbs-test", got.agent)
	assert.Equal(t, "application/json", got.accept)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, map[string]any{
		"name":     "My Repo",
		"scmId":    "git",
		"forkable": true,
	}, got.body)

	t.Run("Query", func(t *testing.T) {
		ok, err := client.Repositories().CreatePermissionsByUser(t.Context(),
			"PRJ", "my repo", bitbucket.PermissionRepoWrite, "jane doe")
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, http.MethodPut, got.method)
		assert.Equal(t, "/rest/api/1.0/projects/PRJ/repos/my%20repo/permissions/users", got.path)
		assert.Equal(t, "name=jane+doe&permission=REPO_WRITE", got.query)
	})
}

func TestClient_basicAuth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"errors":[{"message":"Authentication failed"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"key":"PRJ"}`)
	}), &bitbucket.ClientOptions{
		Token: &bitbucket.AuthenticationToken{
			AuthType: bitbucket.AuthTypeBasic,
			Username: "admin",
			Password: "hunter2",
		},
	})

	project, err := client.Projects().Get(t.Context(), "PRJ")
	require.NoError(t, err)
	assert.Empty(t, project.Errors)
	assert.Equal(t, "PRJ", project.Key)
}

func TestClient_errorsAsData(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"message":"Project NOPE does not exist.",`+
			`"exceptionName":"com.atlassian.bitbucket.project.NoSuchProjectException"}]}`)
	}), nil)

	project, err := client.Projects().Get(t.Context(), "NOPE")
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.True(t, project.Errors.HasException("NoSuchProjectException"))

	ok, err := client.Projects().Delete(t.Context(), "NOPE")
	require.NoError(t, err)
	assert.False(t, ok)

	page, err := client.Repositories().List(t.Context(), "NOPE", 0, 25)
	require.NoError(t, err)
	assert.NotEmpty(t, page.Errors)
	assert.Empty(t, page.Values)
}

func TestClient_decodeError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"slug": 42`)
	}), nil)

	_, err := client.Repositories().Get(t.Context(), "PRJ", "repo")
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_retry(t *testing.T) {
	defer bitbucket.SetRetryInitialInterval(time.Millisecond)()

	// flaky fails the first n requests with the given status.
	flaky := func(n int32, status int) (http.Handler, *atomic.Int32) {
		var calls atomic.Int32
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) <= n {
				w.WriteHeader(status)
				return
			}
			_, _ = io.WriteString(w, `{"key":"PRJ","name":"Project"}`)
		}), &calls
	}

	t.Run("GetRetried", func(t *testing.T) {
		handler, calls := flaky(2, http.StatusServiceUnavailable)
		client := newTestClient(t, handler, &bitbucket.ClientOptions{MaxRetries: 3})

		project, err := client.Projects().Get(t.Context(), "PRJ")
		require.NoError(t, err)
		assert.Empty(t, project.Errors)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("PostNotRetried", func(t *testing.T) {
		handler, calls := flaky(1, http.StatusBadGateway)
		client := newTestClient(t, handler, &bitbucket.ClientOptions{MaxRetries: 3})

		project, err := client.Projects().Create(t.Context(), &bitbucket.CreateProject{Key: "PRJ"})
		require.NoError(t, err)
		assert.Equal(t, bitbucket.ErrorList{{Message: "502 Bad Gateway"}}, project.Errors)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("PostRateLimited", func(t *testing.T) {
		handler, calls := flaky(1, http.StatusTooManyRequests)
		client := newTestClient(t, handler, &bitbucket.ClientOptions{MaxRetries: 3})

		project, err := client.Projects().Create(t.Context(), &bitbucket.CreateProject{Key: "PRJ"})
		require.NoError(t, err)
		assert.Empty(t, project.Errors)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Exhausted", func(t *testing.T) {
		handler, calls := flaky(100, http.StatusServiceUnavailable)
		client := newTestClient(t, handler, &bitbucket.ClientOptions{MaxRetries: 2})

		project, err := client.Projects().Get(t.Context(), "PRJ")
		require.NoError(t, err)
		assert.Equal(t, bitbucket.ErrorList{{Message: "503 Service Unavailable"}}, project.Errors)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Disabled", func(t *testing.T) {
		handler, calls := flaky(1, http.StatusServiceUnavailable)
		client := newTestClient(t, handler, nil)

		project, err := client.Projects().Get(t.Context(), "PRJ")
		require.NoError(t, err)
		assert.NotEmpty(t, project.Errors)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("NotFoundNotRetried", func(t *testing.T) {
		handler, calls := flaky(1, http.StatusNotFound)
		client := newTestClient(t, handler, &bitbucket.ClientOptions{MaxRetries: 3})

		project, err := client.Projects().Get(t.Context(), "PRJ")
		require.NoError(t, err)
		assert.NotEmpty(t, project.Errors)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClient_cancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}), &bitbucket.ClientOptions{MaxRetries: 3})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.Projects().Get(ctx, "PRJ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_rateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"key":"PRJ"}`)
	}), &bitbucket.ClientOptions{RateLimit: 1000})

	for range 5 {
		project, err := client.Projects().Get(t.Context(), "PRJ")
		require.NoError(t, err)
		assert.Empty(t, project.Errors)
	}
	assert.Equal(t, int32(5), calls.Load())

	t.Run("Cancelled", func(t *testing.T) {
		slow := newTestClient(t, http.NotFoundHandler(), &bitbucket.ClientOptions{RateLimit: 0.001})

		// The first request uses the burst.
		_, err := slow.Projects().Get(t.Context(), "PRJ")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()
		_, err = slow.Projects().Get(ctx, "PRJ")
		assert.ErrorContains(t, err, "rate limit")
	})
}
