package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/fetch"
	"github.com/fyrsmithlabs/repotext/internal/intake"
	"github.com/fyrsmithlabs/repotext/internal/workspace"
)

// skipDirs are directories never walked in a cloned repository. The
// version-control metadata directory is mandatory; the rest are
// dependency and build output that the hosted listings would not show
// as source either.
var skipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// CloneStrategy discovers files by shallow-cloning the repository into
// an isolated workspace and walking the resulting tree. It is the most
// complete and most expensive strategy: the final fallback by default,
// or the primary mechanism where outbound scraping is undesirable.
//
// After a successful Discover the strategy retains the workspace so the
// orchestrator can fetch contents from disk; Close releases it.
type CloneStrategy struct {
	manager      *workspace.Manager
	webBase      string
	depth        int
	cloneTimeout time.Duration
	logger       *zap.Logger

	ws *workspace.Workspace
}

// NewCloneStrategy creates the clone-and-walk strategy. depth is the
// clone depth; 0 clones full history.
func NewCloneStrategy(manager *workspace.Manager, webBase string, depth int, cloneTimeout time.Duration, logger *zap.Logger) *CloneStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cloneTimeout <= 0 {
		cloneTimeout = 2 * time.Minute
	}
	return &CloneStrategy{
		manager:      manager,
		webBase:      webBase,
		depth:        depth,
		cloneTimeout: cloneTimeout,
		logger:       logger,
	}
}

// Name implements Strategy.
func (s *CloneStrategy) Name() string { return "clone" }

// Discover implements Strategy.
func (s *CloneStrategy) Discover(ctx context.Context, id intake.Identity, branch string) ([]string, error) {
	ws, err := s.manager.Acquire()
	if err != nil {
		return nil, fmt.Errorf("acquiring clone workspace: %w", err)
	}

	if err := s.clone(ctx, ws.Path(), id, branch); err != nil {
		ws.Remove()
		return nil, fmt.Errorf("cloning %s: %w", id, err)
	}

	paths, err := walkRepo(ctx, ws.Path())
	if err != nil {
		ws.Remove()
		return nil, fmt.Errorf("walking clone of %s: %w", id, err)
	}

	s.ws = ws
	s.logger.Debug("clone discovery complete",
		zap.String("repo", id.String()),
		zap.Int("files", len(paths)))
	return paths, nil
}

// clone performs the shallow clone, preferring the resolved branch and
// falling back to the remote HEAD when that branch does not exist.
func (s *CloneStrategy) clone(ctx context.Context, dir string, id intake.Identity, branch string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cloneTimeout)
	defer cancel()

	cloneURL := fmt.Sprintf("%s/%s/%s", s.webBase, id.Owner, id.Name)

	opts := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        s.depth,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	_, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil && branch != "" {
		s.logger.Debug("branch clone failed, retrying with remote HEAD",
			zap.String("repo", id.String()),
			zap.String("branch", branch),
			zap.Error(err))
		_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:          cloneURL,
			Depth:        s.depth,
			SingleBranch: true,
		})
	}
	return err
}

// walkRepo lists regular files under root as forward-slash relative paths.
func walkRepo(ctx context.Context, root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Source implements SourceProvider; it is only non-nil after a
// successful Discover.
func (s *CloneStrategy) Source() fetch.Source {
	if s.ws == nil {
		return nil
	}
	return fetch.NewDirSource(s.ws.Path())
}

// Close releases the retained workspace.
func (s *CloneStrategy) Close() error {
	s.ws.Remove()
	s.ws = nil
	return nil
}
