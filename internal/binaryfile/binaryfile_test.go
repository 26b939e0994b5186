package binaryfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		path   string
		binary bool
	}{
		{"logo.png", true},
		{"assets/photo.JPG", true},
		{"dist/app.tar.gz", true},
		{"src/a.bin", true},
		{"fonts/inter.woff2", true},
		{"report.pdf", true},
		{"music/track.mp3", true},
		{"main.go", false},
		{"README.md", false},
		{"Makefile", false},
		{".gitignore", false},
		{"src/index.js", false},
		{"nested/dir.png/file.txt", false},
		{"weird.PnG", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.binary, IsBinary(tt.path), "path %q", tt.path)
		})
	}
}
