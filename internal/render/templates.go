package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/content"
)

// Site is the site-wide template context.
type Site struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Tags        []string
}

// PageData is the per-page template context. Item is nil for listing
// pages (index and tag pages).
type PageData struct {
	Site   Site
	Item   *content.Item
	Posts  []*content.Item
	Tag    string
	Tagged []*content.Item
}

// Engine executes the site's layouts with the filter FuncMap installed.
type Engine struct {
	templates *template.Template
}

// FuncMap returns the filter functions available inside layouts.
func FuncMap(cfg *config.Config) template.FuncMap {
	return template.FuncMap{
		"readTime":   ReadTime,
		"formatDate": FormatDate,
		"image":      Image(cfg.Site.ImagePath),
	}
}

// NewEngine parses all *.html layouts from the configured layouts
// directory.
func NewEngine(root string, cfg *config.Config) (*Engine, error) {
	pattern := filepath.Join(root, cfg.Content.LayoutsDir, "*.html")
	tpl, err := template.New("layouts").Funcs(FuncMap(cfg)).ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse layouts %s: %w", pattern, err)
	}
	return &Engine{templates: tpl}, nil
}

// Render executes the named layout with the given page data.
func (e *Engine) Render(layout string, data PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, layout+".html", data); err != nil {
		return nil, fmt.Errorf("render layout %s: %w", layout, err)
	}
	return buf.Bytes(), nil
}

// Has reports whether a layout with the given name was parsed.
func (e *Engine) Has(layout string) bool {
	return e.templates.Lookup(layout+".html") != nil
}
