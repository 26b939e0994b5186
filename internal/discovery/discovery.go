// Package discovery produces candidate file-path lists for a repository.
//
// Three interchangeable strategies exist, in increasing cost order: a
// structured tree query against the GitHub API, HTML directory-page
// scraping with bounded recursion, and a shallow clone walked on disk.
// A strategy may legitimately return an empty list; it must never fail
// in a way that prevents trying the next one.
package discovery

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/repotext/internal/fetch"
	"github.com/fyrsmithlabs/repotext/internal/intake"
)

// Strategy discovers the files reachable on one branch of a repository.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Discover returns candidate repository-relative paths. An empty
	// slice with a nil error means the strategy found nothing; an error
	// means the strategy could not run and the next one should be tried.
	Discover(ctx context.Context, id intake.Identity, branch string) ([]string, error)
}

// SourceProvider is implemented by strategies that retain content
// locally after discovery. The orchestrator fetches through the
// provided source instead of the raw-content host.
type SourceProvider interface {
	Source() fetch.Source
}

// Dedup removes duplicate paths, preserving first-occurrence order, and
// drops anything under the version-control metadata directory.
func Dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || isVCSPath(p) {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func isVCSPath(p string) bool {
	return p == ".git" || strings.HasPrefix(p, ".git/") || strings.Contains(p, "/.git/")
}
