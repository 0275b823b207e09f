// Package gitinfo derives per-file last-modified timestamps from the
// site's git history, used for sitemap and feed lastmod fields. Sites
// that are not git repositories simply keep filesystem mtimes.
package gitinfo

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/stenstad/inkwell/internal/content"
)

// ErrNoRepository indicates the site root is not inside a git work tree.
var ErrNoRepository = errors.New("site root is not a git repository")

// History reads commit timestamps for files in the site repository.
type History struct {
	repo *git.Repository
}

// Open locates the repository containing root, searching parent
// directories the way git itself does.
func Open(root string) (*History, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNoRepository
		}
		return nil, err
	}
	return &History{repo: repo}, nil
}

// LastModified returns the committer time of the most recent commit
// touching relPath. ok is false when the file has no history (untracked
// or never committed).
func (h *History) LastModified(relPath string) (time.Time, bool) {
	path := filepath.ToSlash(relPath)
	iter, err := h.repo.Log(&git.LogOptions{
		FileName: &path,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return time.Time{}, false
	}
	return commit.Committer.When, true
}

// Apply overwrites each item's LastMod with its git history timestamp
// where one exists.
func (h *History) Apply(items []*content.Item) {
	for _, it := range items {
		if ts, ok := h.LastModified(it.SourcePath); ok {
			it.LastMod = ts
		}
	}
}
