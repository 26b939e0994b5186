package gitmeta

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/intake"
)

// apiClientFor points a go-github client at a test server.
func apiClientFor(t *testing.T, srv *httptest.Server) *github.Client {
	t.Helper()
	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func TestResolveFromMetadata(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets", r.URL.Path)
		fmt.Fprint(w, `{"name":"widgets","default_branch":"trunk"}`)
	}))
	defer api.Close()

	r := NewGitHubResolver(apiClientFor(t, api), nil, "http://unused.invalid", time.Second, zap.NewNop())
	branch := r.Resolve(context.Background(), intake.Identity{Owner: "acme", Name: "widgets"})

	assert.Equal(t, "trunk", branch)
}

func TestResolveFallsBackToProbe(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer api.Close()

	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only master has a README.
		if r.URL.Path == "/acme/widgets/master/README.md" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	r := NewGitHubResolver(apiClientFor(t, api), raw.Client(), raw.URL, time.Second, zap.NewNop())
	branch := r.Resolve(context.Background(), intake.Identity{Owner: "acme", Name: "widgets"})

	assert.Equal(t, "master", branch)
}

func TestResolveAllProbesFailReturnsFirstCandidate(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer api.Close()

	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	r := NewGitHubResolver(apiClientFor(t, api), raw.Client(), raw.URL, time.Second, zap.NewNop())
	branch := r.Resolve(context.Background(), intake.Identity{Owner: "acme", Name: "widgets"})

	assert.Equal(t, "main", branch)
}

func TestResolveSurvivesUnreachableHosts(t *testing.T) {
	// Both the API and the raw host are unreachable; resolution must
	// still produce the first candidate instead of erroring.
	r := NewGitHubResolver(nil, &http.Client{Timeout: 100 * time.Millisecond},
		"http://127.0.0.1:1", 100*time.Millisecond, zap.NewNop())
	branch := r.Resolve(context.Background(), intake.Identity{Owner: "acme", Name: "widgets"})

	assert.Equal(t, "main", branch)
}
