package utils

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// ExcerptLimit is the default plain-text excerpt length in characters.
const ExcerptLimit = 180

// postPolicy is the fixed allow-list for displayed post content. This is a
// security boundary: no scripts, no event handlers, no unknown attributes
// survive it regardless of input.
var postPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br", "strong", "em", "b", "i", "u", "s",
		"h1", "h2", "h3", "h4",
		"ul", "ol", "li", "blockquote", "pre", "code",
	)
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
	p.RequireNoFollowOnLinks(true)
	return p
}()

// stripPolicy removes every tag, leaving text content for excerpting.
var stripPolicy = bluemonday.StrictPolicy()

var markdown = goldmark.New()

// SanitizeHTML cleans HTML content against the post allow-list.
func SanitizeHTML(input string) string {
	return postPolicy.Sanitize(input)
}

// RenderContent turns stored content into display HTML and plain text. When
// rawHTML is present it is sanitized directly; otherwise markdownSrc is
// converted to HTML first and sanitized identically.
func RenderContent(rawHTML, markdownSrc string) (htmlOut, textOut string) {
	if rawHTML != "" {
		htmlOut = postPolicy.Sanitize(rawHTML)
	} else {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(markdownSrc), &buf); err != nil {
			// Markdown conversion failing means malformed input; fall back
			// to treating it as plain text.
			htmlOut = postPolicy.Sanitize(markdownSrc)
		} else {
			htmlOut = postPolicy.Sanitize(buf.String())
		}
	}
	textOut = html.UnescapeString(stripPolicy.Sanitize(htmlOut))
	return htmlOut, textOut
}

// Excerpt collapses whitespace and truncates text to limit characters,
// appending an ellipsis when truncated. Truncation counts code points, never
// bytes, so multibyte characters are never split.
func Excerpt(text string, limit int) string {
	if limit <= 0 {
		limit = ExcerptLimit
	}
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	return string(runes[:limit]) + "…"
}
