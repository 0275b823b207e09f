package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/frontmatter"
	"github.com/stenstad/inkwell/internal/logfields"
)

// Loader walks the content directory and parses every Markdown file.
type Loader struct {
	root string // site root directory
	cfg  *config.Config
	now  func() time.Time
}

// NewLoader creates a loader rooted at the given site directory.
func NewLoader(root string, cfg *config.Config) *Loader {
	return &Loader{root: root, cfg: cfg, now: time.Now}
}

// WithClock overrides the publication clock. Used by tests and by the
// preview server's scheduled rebuilds.
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

// Load discovers all publishable content items. Drafts and posts dated
// in the future are excluded. Posts are returned newest first, pages
// sorted by title.
func (l *Loader) Load() ([]*Item, error) {
	contentDir := filepath.Join(l.root, l.cfg.Content.Dir)
	postsDir := filepath.Join(contentDir, l.cfg.Content.PostsDir)

	var items []*Item
	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		kind := KindPage
		if within(postsDir, path) {
			kind = KindPost
		}

		item, err := l.loadFile(path, kind)
		if err != nil {
			return err
		}
		if item == nil {
			return nil // excluded (draft or future-dated)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content dir: %w", err)
	}

	sortItems(items)
	slog.Debug("content loaded", logfields.Count(len(items)))
	return items, nil
}

func (l *Loader) loadFile(path string, kind Kind) (*Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	metaRaw, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var meta Meta
	if err := frontmatter.Parse(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("decode front matter of %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if meta.Title == "" {
		meta.Title = base
	}

	if meta.Draft {
		slog.Debug("skipping draft", logfields.File(path))
		return nil, nil
	}
	if kind == KindPost && !meta.Date.IsZero() && meta.Date.After(l.now()) {
		slog.Debug("skipping future-dated post", logfields.File(path))
		return nil, nil
	}

	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		rel = path
	}

	lastMod := l.now()
	if info, statErr := os.Stat(path); statErr == nil {
		lastMod = info.ModTime()
	}

	return &Item{
		SourcePath: filepath.ToSlash(rel),
		Slug:       Slugify(base),
		Kind:       kind,
		Meta:       meta,
		Body:       body,
		LastMod:    lastMod,
	}, nil
}

// sortItems orders posts newest first (ties broken by title), pages by
// title, with all posts before pages.
func sortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Kind != b.Kind {
			return a.Kind == KindPost
		}
		if a.Kind == KindPost && !a.Meta.Date.Equal(b.Meta.Date.Time) {
			return a.Meta.Date.After(b.Meta.Date.Time)
		}
		return a.Meta.Title < b.Meta.Title
	})
}

// within reports whether path is inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
