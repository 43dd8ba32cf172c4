package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_Basic(t *testing.T) {
	r := New()

	out, err := r.Render("# Hello\n\nSome *emphasis* and `code`.")
	require.NoError(t, err)
	require.Contains(t, out, `<h1 id="hello">Hello</h1>`)
	require.Contains(t, out, "<em>emphasis</em>")
	require.Contains(t, out, "<code>code</code>")
}

func TestRender_GFMTable(t *testing.T) {
	out, err := New().Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<td>1</td>")
}

func TestRender_StripsScripts(t *testing.T) {
	out, err := New().Render("hi\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>")
	require.NoError(t, err)
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "javascript:")
}

func TestRender_KeepsCodeLanguage(t *testing.T) {
	out, err := New().Render("```go\nfmt.Println(1)\n```\n")
	require.NoError(t, err)
	require.Contains(t, out, `class="language-go"`)
}

func TestRender_Deterministic(t *testing.T) {
	r := New()
	text := "## Title\n\n- one\n- two\n"
	a, err := r.Render(text)
	require.NoError(t, err)
	b, err := r.Render(text)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
