package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIBaseURL)
	assert.Equal(t, "https://raw.githubusercontent.com", cfg.GitHub.RawBaseURL)
	assert.Equal(t, "https://github.com", cfg.GitHub.WebBaseURL)
	assert.Equal(t, 2000, cfg.Acquire.LineCap)
	assert.Equal(t, 1000, cfg.Acquire.MaxFiles)
	assert.Equal(t, 8, cfg.Acquire.Concurrency)
	assert.Equal(t, 20, cfg.Acquire.ScrapeDepth)
	assert.False(t, cfg.Acquire.ClonePrimary)
	assert.False(t, cfg.GitHub.Token.IsSet())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REPOTEXT_SERVER_PORT", "9191")
	t.Setenv("REPOTEXT_ACQUIRE_LINE_CAP", "100")
	t.Setenv("REPOTEXT_ACQUIRE_CLONE_PRIMARY", "true")
	t.Setenv("REPOTEXT_GITHUB_TOKEN", "ghp_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Acquire.LineCap)
	assert.True(t, cfg.Acquire.ClonePrimary)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token.Value())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
acquire:
  line_cap: 500
  probe_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Acquire.LineCap)
	assert.Equal(t, 2*time.Second, cfg.Acquire.ProbeTimeout.Duration())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))
	t.Setenv("REPOTEXT_SERVER_PORT", "9500")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9500, cfg.Server.Port)
}

func TestLoadMissingFileIsTolerated(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("REPOTEXT_SERVER_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("ghp_supersecret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "ghp_supersecret", s.Value())

	out, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "supersecret")
}
