package fetch

import "strings"

const (
	binaryPlaceholder = "[binary file omitted]"
	errorPlaceholder  = "[content could not be retrieved]"
)

// separator is the fixed-width rule surrounding each path header.
var separator = strings.Repeat("=", 50)

// formatBlock renders one file as a path header, the content, and a
// blank-line separator.
func formatBlock(path, content string) string {
	body := strings.TrimRight(content, "\n")

	var b strings.Builder
	b.WriteString(separator)
	b.WriteByte('\n')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(separator)
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteString("\n\n")
	return b.String()
}

// countLines reports the newline-delimited line count of content.
// A trailing newline does not add an empty final line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
