package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTMLStripsScripts(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"script tag", `<p>hi</p><script>alert(1)</script>`},
		{"onerror handler", `<img src="x" onerror="alert(1)">`},
		{"onclick handler", `<p onclick="steal()">click</p>`},
		{"javascript url", `<a href="javascript:alert(1)">link</a>`},
		{"iframe", `<iframe src="https://evil.example"></iframe>`},
		{"style attr", `<p style="position:fixed">x</p>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := SanitizeHTML(tc.in)
			assert.NotContains(t, out, "script")
			assert.NotContains(t, out, "onerror")
			assert.NotContains(t, out, "onclick")
			assert.NotContains(t, out, "javascript:")
			assert.NotContains(t, out, "iframe")
			assert.NotContains(t, out, "style=")
		})
	}
}

func TestSanitizeHTMLKeepsAllowedMarkup(t *testing.T) {
	in := `<h2>Title</h2><p>Hello <strong>world</strong> and <em>friends</em></p><ul><li>one</li></ul>`
	out := SanitizeHTML(in)
	assert.Contains(t, out, "<h2>")
	assert.Contains(t, out, "<strong>")
	assert.Contains(t, out, "<em>")
	assert.Contains(t, out, "<li>")
}

func TestSanitizeHTMLLinksGetNoFollow(t *testing.T) {
	out := SanitizeHTML(`<a href="https://example.com">site</a>`)
	assert.Contains(t, out, `rel="nofollow"`)
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestRenderContentFromMarkdown(t *testing.T) {
	html, text := RenderContent("", "# My Trip\n\nWe saw **dinosaur** bones!")
	assert.Contains(t, html, "<h1>")
	assert.Contains(t, html, "<strong>dinosaur</strong>")
	assert.Contains(t, text, "My Trip")
	assert.Contains(t, text, "dinosaur bones!")
	assert.NotContains(t, text, "<")
}

func TestRenderContentPrefersRawHTML(t *testing.T) {
	html, text := RenderContent("<p>already html</p>", "**ignored markdown**")
	assert.Equal(t, "<p>already html</p>", html)
	assert.Equal(t, "already html", strings.TrimSpace(text))
}

func TestRenderContentSanitizesMarkdownOutput(t *testing.T) {
	// Raw HTML embedded in markdown must not survive rendering.
	html, _ := RenderContent("", "hello <script>alert(1)</script> world")
	assert.NotContains(t, html, "<script>")
}

func TestExcerpt(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello world", Excerpt("hello world", 180))
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		assert.Equal(t, "a b c", Excerpt("a\n\n b \t c", 180))
	})

	t.Run("exact limit not truncated", func(t *testing.T) {
		in := strings.Repeat("x", 180)
		assert.Equal(t, in, Excerpt(in, 180))
	})

	t.Run("over limit truncated with ellipsis", func(t *testing.T) {
		in := strings.Repeat("x", 181)
		got := Excerpt(in, 180)
		assert.Equal(t, 181, len([]rune(got)))
		assert.True(t, strings.HasSuffix(got, "…"))
	})

	t.Run("multibyte runes never split", func(t *testing.T) {
		in := strings.Repeat("日", 200)
		got := Excerpt(in, 180)
		runes := []rune(got)
		assert.Equal(t, 181, len(runes))
		for _, r := range runes[:180] {
			assert.Equal(t, '日', r)
		}
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		in := strings.Repeat("x", 500)
		got := Excerpt(in, 0)
		assert.Equal(t, ExcerptLimit+1, len([]rune(got)))
	})
}
