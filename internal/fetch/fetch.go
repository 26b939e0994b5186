// Package fetch retrieves and formats repository file contents.
//
// A Fetcher turns one repository path into a formatted text block with a
// reliable line count. Transport problems and binary payloads never
// surface as errors; they become one-line placeholders so a single
// unreadable file cannot abort an acquisition.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/repotext/internal/intake"
)

// Kind classifies what a fetched block contains.
type Kind int

const (
	// KindText is real decoded file content, possibly truncated.
	KindText Kind = iota
	// KindBinary is the placeholder for a binary or undecodable file.
	KindBinary
	// KindError is the placeholder for a file that could not be retrieved.
	KindError
)

// FetchedFile is one formatted file block and its reported line count.
//
// LineCount always reflects the original content's full line count even
// when the emitted block is truncated; placeholders report 1.
type FetchedFile struct {
	Path             string
	FormattedContent string
	LineCount        int
	Kind             Kind
}

// Source retrieves raw bytes for a repository-relative path. The
// transport depends on the discovery strategy that produced the path:
// the raw-content host for API and scraping paths, the local filesystem
// for cloned repositories.
type Source interface {
	Raw(ctx context.Context, path string) ([]byte, error)
}

// Fetcher formats fetched content and applies the truncation policy.
type Fetcher struct {
	lineCap int
	logger  *zap.Logger
}

// NewFetcher creates a fetcher. lineCap bounds emitted lines per file;
// 0 disables truncation.
func NewFetcher(lineCap int, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{lineCap: lineCap, logger: logger}
}

// Fetch retrieves path via src and returns its formatted block.
// Fetch never returns an error; failures degrade to placeholders.
func (f *Fetcher) Fetch(ctx context.Context, src Source, path string) FetchedFile {
	raw, err := src.Raw(ctx, path)
	if err != nil {
		f.logger.Debug("file fetch failed",
			zap.String("path", path),
			zap.Error(err))
		return placeholderFile(path, errorPlaceholder, KindError)
	}

	if !utf8.Valid(raw) {
		return placeholderFile(path, binaryPlaceholder, KindBinary)
	}

	content := string(raw)
	total := countLines(content)

	if f.lineCap > 0 && total > f.lineCap {
		lines := strings.Split(content, "\n")[:f.lineCap]
		content = strings.Join(lines, "\n") + "\n" +
			fmt.Sprintf("[truncated: showing first %d of %d lines]", f.lineCap, total)
	}

	return FetchedFile{
		Path:             path,
		FormattedContent: formatBlock(path, content),
		LineCount:        total,
		Kind:             KindText,
	}
}

// Binary returns the placeholder block for a path the classifier ruled
// binary before any fetch was attempted.
func (f *Fetcher) Binary(path string) FetchedFile {
	return placeholderFile(path, binaryPlaceholder, KindBinary)
}

func placeholderFile(path, placeholder string, kind Kind) FetchedFile {
	return FetchedFile{
		Path:             path,
		FormattedContent: formatBlock(path, placeholder),
		LineCount:        1,
		Kind:             kind,
	}
}

// RemoteSource fetches raw content over HTTP for one repository and branch.
type RemoteSource struct {
	hc      *http.Client
	baseURL string
	id      intake.Identity
	branch  string
	token   string
	limiter *rate.Limiter
}

// NewRemoteSource creates a Source reading from the raw-content host.
// token, when non-empty, is forwarded as an Authorization header and
// never logged. limiter may be nil to disable throttling.
func NewRemoteSource(hc *http.Client, baseURL string, id intake.Identity, branch, token string, limiter *rate.Limiter) *RemoteSource {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &RemoteSource{
		hc:      hc,
		baseURL: baseURL,
		id:      id,
		branch:  branch,
		token:   token,
		limiter: limiter,
	}
}

// Raw fetches the file at path on the source's branch.
func (s *RemoteSource) Raw(ctx context.Context, path string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	url := fmt.Sprintf("%s/%s/%s/%s/%s", s.baseURL, s.id.Owner, s.id.Name, s.branch, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "token "+s.token)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", path, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// DirSource reads raw content from a local directory, typically a clone
// workspace.
type DirSource struct {
	root string
}

// NewDirSource creates a Source reading from root.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Raw reads the file at the repository-relative path under the root.
// Paths escaping the root are rejected.
func (s *DirSource) Raw(_ context.Context, path string) ([]byte, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("path %q escapes the workspace", path)
	}
	return os.ReadFile(full)
}
