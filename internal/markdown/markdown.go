// Package markdown converts note bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer is a goldmark converter followed by a bluemonday UGC policy.
// It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Renderer with GitHub-flavoured Markdown enabled.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Raw HTML passes through goldmark; bluemonday decides what survives.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")

	return &Renderer{md: md, policy: policy}
}

// Render converts text to sanitized HTML.
func (r *Renderer) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return string(r.policy.SanitizeBytes(buf.Bytes())), nil
}
