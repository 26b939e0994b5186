package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/fyrsmithlabs/repotext/internal/intake"
)

// ScrapeStrategy discovers files by walking the repository's HTML
// directory listing pages.
//
// The walk carries a visited set keyed by directory path and a hard
// recursion depth bound, so it terminates even when the host serves
// cyclic or pathological link structures. A page that cannot be fetched
// or parsed only loses its own subtree; the rest of the walk continues.
type ScrapeStrategy struct {
	hc       *http.Client
	webBase  string
	maxDepth int
	timeout  time.Duration
	logger   *zap.Logger
}

// NewScrapeStrategy creates the HTML scraping strategy.
func NewScrapeStrategy(hc *http.Client, webBase string, maxDepth int, timeout time.Duration, logger *zap.Logger) *ScrapeStrategy {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = 20
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ScrapeStrategy{
		hc:       hc,
		webBase:  webBase,
		maxDepth: maxDepth,
		timeout:  timeout,
		logger:   logger,
	}
}

// Name implements Strategy.
func (s *ScrapeStrategy) Name() string { return "scrape" }

// Discover implements Strategy.
func (s *ScrapeStrategy) Discover(ctx context.Context, id intake.Identity, branch string) ([]string, error) {
	var files []string
	visited := map[string]struct{}{}

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > s.maxDepth {
			return
		}
		if _, ok := visited[dir]; ok {
			return
		}
		visited[dir] = struct{}{}

		if ctx.Err() != nil {
			return
		}

		pageFiles, subdirs, err := s.listDirectory(ctx, id, branch, dir)
		if err != nil {
			// Losing one subtree must not abort the walk.
			s.logger.Debug("directory page skipped",
				zap.String("repo", id.String()),
				zap.String("dir", dir),
				zap.Error(err))
			return
		}

		files = append(files, pageFiles...)
		for _, sub := range subdirs {
			walk(sub, depth+1)
		}
	}

	walk("", 1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("scrape discovery complete",
		zap.String("repo", id.String()),
		zap.Int("files", len(files)),
		zap.Int("pages", len(visited)))
	return files, nil
}

// listDirectory fetches one directory page and extracts its file and
// subdirectory links.
func (s *ScrapeStrategy) listDirectory(ctx context.Context, id intake.Identity, branch, dir string) (files, subdirs []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pageURL := fmt.Sprintf("%s/%s/%s/tree/%s", s.webBase, id.Owner, id.Name, branch)
	if dir != "" {
		pageURL += "/" + dir
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("directory page %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing directory page %s: %w", pageURL, err)
	}

	filePrefix := fmt.Sprintf("/%s/%s/blob/%s/", id.Owner, id.Name, branch)
	dirPrefix := fmt.Sprintf("/%s/%s/tree/%s/", id.Owner, id.Name, branch)

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if p, ok := pathAfterPrefix(attr.Val, filePrefix); ok {
					files = append(files, p)
				} else if p, ok := pathAfterPrefix(attr.Val, dirPrefix); ok {
					subdirs = append(subdirs, p)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	return files, subdirs, nil
}

// pathAfterPrefix extracts and unescapes the repository path following
// prefix in an href, tolerating absolute URLs.
func pathAfterPrefix(href, prefix string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	p := u.Path
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(p, prefix), "/")
	if rest == "" {
		return "", false
	}
	return rest, true
}
