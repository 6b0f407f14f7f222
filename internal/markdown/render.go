// Package markdown renders stored document content to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// Render converts Markdown content to an HTML fragment.
func Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("markdown: render: %w", err)
	}
	return buf.String(), nil
}
