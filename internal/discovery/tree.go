package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/intake"
)

// TreeStrategy lists files with one recursive tree query against the
// GitHub API. Preferred because it is a single round trip and
// authoritative for the resolved branch.
type TreeStrategy struct {
	api     *github.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewTreeStrategy creates the structured tree query strategy.
func NewTreeStrategy(api *github.Client, timeout time.Duration, logger *zap.Logger) *TreeStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TreeStrategy{api: api, timeout: timeout, logger: logger}
}

// Name implements Strategy.
func (s *TreeStrategy) Name() string { return "tree" }

// Discover implements Strategy.
func (s *TreeStrategy) Discover(ctx context.Context, id intake.Identity, branch string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tree, _, err := s.api.Git.GetTree(ctx, id.Owner, id.Name, branch, true)
	if err != nil {
		return nil, fmt.Errorf("tree query for %s@%s: %w", id, branch, err)
	}

	if tree.GetTruncated() {
		// The API refuses to enumerate very large trees completely;
		// partial listings are still worth returning.
		s.logger.Warn("tree listing truncated by API",
			zap.String("repo", id.String()),
			zap.String("branch", branch))
	}

	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		paths = append(paths, entry.GetPath())
	}

	s.logger.Debug("tree discovery complete",
		zap.String("repo", id.String()),
		zap.Int("files", len(paths)))
	return paths, nil
}
