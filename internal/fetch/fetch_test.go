package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/intake"
)

var testIdentity = intake.Identity{Owner: "acme", Name: "widgets"}

func remoteFor(srv *httptest.Server, token string) *RemoteSource {
	return NewRemoteSource(srv.Client(), srv.URL, testIdentity, "main", token, nil)
}

func TestFetchFormatsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/widgets/main/README.md", r.URL.Path)
		fmt.Fprint(w, "# Widgets\n\nHello.\n")
	}))
	defer srv.Close()

	f := NewFetcher(2000, zap.NewNop())
	got := f.Fetch(context.Background(), remoteFor(srv, ""), "README.md")

	assert.Equal(t, KindText, got.Kind)
	assert.Equal(t, 3, got.LineCount)
	assert.Contains(t, got.FormattedContent, separator+"\nREADME.md\n"+separator+"\n")
	assert.Contains(t, got.FormattedContent, "# Widgets")
	assert.True(t, strings.HasSuffix(got.FormattedContent, "\n\n"))
}

func TestFetchTruncatesLongContent(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sb.String())
	}))
	defer srv.Close()

	f := NewFetcher(10, zap.NewNop())
	got := f.Fetch(context.Background(), remoteFor(srv, ""), "big.txt")

	// Reported count is the original total, not the emitted count.
	assert.Equal(t, 50, got.LineCount)
	assert.Contains(t, got.FormattedContent, "line 10")
	assert.NotContains(t, got.FormattedContent, "line 11")
	assert.Contains(t, got.FormattedContent, "[truncated: showing first 10 of 50 lines]")
}

func TestFetchBinaryPayloadBecomesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xfe, 0x00, 0x01})
	}))
	defer srv.Close()

	f := NewFetcher(2000, zap.NewNop())
	got := f.Fetch(context.Background(), remoteFor(srv, ""), "blob.dat")

	assert.Equal(t, KindBinary, got.Kind)
	assert.Equal(t, 1, got.LineCount)
	assert.Contains(t, got.FormattedContent, "[binary file omitted]")
}

func TestFetchErrorBecomesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(2000, zap.NewNop())
	got := f.Fetch(context.Background(), remoteFor(srv, ""), "missing.go")

	assert.Equal(t, KindError, got.Kind)
	assert.Equal(t, 1, got.LineCount)
	assert.Contains(t, got.FormattedContent, "[content could not be retrieved]")
	assert.Contains(t, got.FormattedContent, "missing.go")
}

func TestRemoteSourceForwardsToken(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	_, err := remoteFor(srv, "ghp_secret").Raw(context.Background(), "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "token ghp_secret", seen)
}

func TestDirSourceReadsFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.go"), []byte("package a\n"), 0o600))

	src := NewDirSource(root)
	raw, err := src.Raw(context.Background(), "src/a.go")
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(raw))
}

func TestDirSourceRejectsEscapes(t *testing.T) {
	src := NewDirSource(t.TempDir())
	_, err := src.Raw(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"one\ntwo\n", 2},
		{"\n\n\n", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countLines(tt.content), "content %q", tt.content)
	}
}
