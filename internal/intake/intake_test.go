package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		owner string
		repo  string
	}{
		{"plain https", "https://github.com/acme/widgets", "acme", "widgets"},
		{"trailing slash", "https://github.com/acme/widgets/", "acme", "widgets"},
		{"dot git suffix", "https://github.com/acme/widgets.git", "acme", "widgets"},
		{"scheme-less", "github.com/acme/widgets", "acme", "widgets"},
		{"www prefix", "https://www.github.com/acme/widgets", "acme", "widgets"},
		{"dotted name", "https://github.com/acme/widgets.js", "acme", "widgets.js"},
		{"hyphenated owner", "https://github.com/acme-labs/my_repo", "acme-labs", "my_repo"},
		{"surrounding whitespace", "  https://github.com/acme/widgets  ", "acme", "widgets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseRepoURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, id.Owner)
			assert.Equal(t, tt.repo, id.Name)
		})
	}
}

func TestParseRepoURL_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a url", "::::"},
		{"wrong host", "https://gitlab.com/acme/widgets"},
		{"missing name", "https://github.com/acme"},
		{"extra segments", "https://github.com/acme/widgets/tree/main"},
		{"query string", "https://github.com/acme/widgets?tab=readme"},
		{"bad scheme", "ftp://github.com/acme/widgets"},
		{"bad owner chars", "https://github.com/ac me/widgets"},
		{"hidden repo name", "https://github.com/acme/-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRepoURL(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestIdentityString(t *testing.T) {
	id := Identity{Owner: "acme", Name: "widgets"}
	assert.Equal(t, "acme/widgets", id.String())
	assert.Equal(t, "https://github.com/acme/widgets", id.URL())
}
