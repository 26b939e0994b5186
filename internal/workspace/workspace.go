// Package workspace manages isolated scratch directories for clone operations.
//
// Each acquisition attempt that clones a repository owns exactly one
// workspace. The directory name combines a high-resolution timestamp with
// a UUID suffix so concurrent requests can never collide, and Remove is
// safe to call on every exit path.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager allocates uniquely named scratch directories under a root.
type Manager struct {
	root   string
	logger *zap.Logger
}

// NewManager creates a workspace manager rooted at root. An empty root
// falls back to the system temporary directory.
func NewManager(root string, logger *zap.Logger) *Manager {
	if root == "" {
		root = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{root: root, logger: logger}
}

// Workspace is a scratch directory owned by a single acquisition attempt.
type Workspace struct {
	path    string
	logger  *zap.Logger
	removed bool
}

// Acquire creates a new uniquely named scratch directory.
func (m *Manager) Acquire() (*Workspace, error) {
	name := fmt.Sprintf("repotext-%d-%s", time.Now().UnixNano(), strings.Split(uuid.NewString(), "-")[0])
	path := filepath.Join(m.root, name)

	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", path, err)
	}

	m.logger.Debug("workspace acquired", zap.String("path", path))
	return &Workspace{path: path, logger: m.logger}, nil
}

// Path returns the workspace directory path.
func (w *Workspace) Path() string {
	return w.path
}

// Remove deletes the workspace directory and everything under it.
// Removal failure is logged, never escalated; calling Remove more than
// once is a no-op.
func (w *Workspace) Remove() {
	if w == nil || w.removed {
		return
	}
	w.removed = true

	if err := os.RemoveAll(w.path); err != nil {
		w.logger.Warn("workspace removal failed",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}
	w.logger.Debug("workspace removed", zap.String("path", w.path))
}
