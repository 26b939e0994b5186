package discovery

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

var testIdentity = intake.Identity{Owner: "acme", Name: "widgets"}

func apiClientFor(t *testing.T, srv *httptest.Server) *github.Client {
	t.Helper()
	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func TestTreeDiscoverListsBlobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/git/trees/main", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{
			"sha": "abc",
			"tree": [
				{"path": "README.md", "type": "blob"},
				{"path": "src", "type": "tree"},
				{"path": "src/a.go", "type": "blob"},
				{"path": "src/a.bin", "type": "blob"}
			]
		}`)
	}))
	defer srv.Close()

	s := NewTreeStrategy(apiClientFor(t, srv), time.Second, zap.NewNop())
	paths, err := s.Discover(context.Background(), testIdentity, "main")

	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "src/a.go", "src/a.bin"}, paths)
}

func TestTreeDiscoverPropagatesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewTreeStrategy(apiClientFor(t, srv), time.Second, zap.NewNop())
	_, err := s.Discover(context.Background(), testIdentity, "main")

	assert.Error(t, err)
}

func TestTreeDiscoverEmptyTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha": "abc", "tree": []}`)
	}))
	defer srv.Close()

	s := NewTreeStrategy(apiClientFor(t, srv), time.Second, zap.NewNop())
	paths, err := s.Discover(context.Background(), testIdentity, "main")

	require.NoError(t, err)
	assert.Empty(t, paths)
}
