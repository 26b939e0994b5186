package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedup(t *testing.T) {
	in := []string{
		"README.md",
		"src/a.go",
		"README.md",
		"",
		".git/config",
		"vendor/.git/HEAD",
		"src/a.go",
		"docs/guide.md",
	}

	got := Dedup(in)

	assert.Equal(t, []string{"README.md", "src/a.go", "docs/guide.md"}, got)
}

func TestDedupEmpty(t *testing.T) {
	assert.Empty(t, Dedup(nil))
	assert.Empty(t, Dedup([]string{".git", ".git/HEAD"}))
}
