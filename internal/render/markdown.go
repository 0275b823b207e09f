// Package render turns loaded content into HTML: Markdown conversion,
// template execution, and the filter functions exposed to layouts.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown converts Markdown bodies to HTML.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown constructs the site's Markdown converter: GFM with
// auto-generated heading anchors. Raw HTML in posts is passed through,
// the usual stance for single-author sites.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithUnsafe(),
			),
		),
	}
}

// Convert renders a Markdown body (front matter already removed) to HTML.
func (m *Markdown) Convert(body []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
