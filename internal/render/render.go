// Package render turns article markdown into sanitised HTML and strips markup
// from reader comments.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown      goldmark.Markdown
	articlePolicy *bluemonday.Policy
	strictPolicy  *bluemonday.Policy
	initOnce      sync.Once
)

func initRenderers() {
	initOnce.Do(func() {
		// Raw HTML in the markdown is kept here and cleaned by articlePolicy.
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		)

		articlePolicy = bluemonday.UGCPolicy()
		articlePolicy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

		strictPolicy = bluemonday.StrictPolicy()
	})
}

// Markdown renders an article body to HTML that is safe to embed in a page.
func Markdown(src string) (string, error) {
	initRenderers()

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return articlePolicy.Sanitize(buf.String()), nil
}

// PlainText removes all markup from s. Script and style contents are dropped.
func PlainText(s string) string {
	initRenderers()
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
