// Package content discovers and models the source files of a site:
// Markdown posts and pages with YAML front matter.
package content

import (
	"fmt"
	"html/template"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes dated posts from standalone pages.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Item is one content file discovered during a build. Items are created
// when a source file is read and are not mutated afterwards except for
// the rendered HTML, which the render stage fills in.
type Item struct {
	SourcePath string // relative to the site root
	Slug       string
	Kind       Kind
	Meta       Meta
	Body       []byte        // Markdown with front matter removed
	HTML       template.HTML // rendered body, set by the render stage
	LastMod    time.Time     // file mtime, refined from git history when available
}

// Permalink returns the item's path within the generated site.
func (it *Item) Permalink() string {
	if it.Kind == KindPost {
		return "/posts/" + it.Slug + "/"
	}
	return "/" + it.Slug + "/"
}

// Meta is the typed front matter of a content file. Absent fields keep
// their zero values; an item without tags simply contributes nothing to
// the tag set.
type Meta struct {
	Title       string   `yaml:"title"`
	Date        Date     `yaml:"date,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Draft       bool     `yaml:"draft,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Date accepts both YAML timestamps and common date strings.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	var ts time.Time
	if err := value.Decode(&ts); err == nil {
		d.Time = ts
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("date must be a timestamp or string: %w", err)
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			d.Time = ts
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", raw)
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format("2006-01-02"), nil
}
