package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/content"
	"github.com/stenstad/inkwell/internal/frontmatter"
)

// NewCmd implements the 'new' command: scaffold a post file.
type NewCmd struct {
	Title string   `arg:"" help:"Title of the new post"`
	Tags  []string `short:"t" help:"Tags for the post"`
	Draft bool     `help:"Mark the post as a draft"`
}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slug := content.Slugify(n.Title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", n.Title)
	}

	meta := content.Meta{
		Title: n.Title,
		Date:  content.Date{Time: time.Now()},
		Tags:  n.Tags,
		Draft: n.Draft,
	}
	doc, err := frontmatter.Serialize(meta, nil)
	if err != nil {
		return fmt.Errorf("serialize front matter: %w", err)
	}

	postsDir := filepath.Join(root.SiteRoot(), cfg.Content.Dir, cfg.Content.PostsDir)
	if err := os.MkdirAll(postsDir, 0o750); err != nil {
		return err
	}
	path := filepath.Join(postsDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("post already exists: %s", path)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write post: %w", err)
	}

	fmt.Println("Created", path)
	return nil
}
