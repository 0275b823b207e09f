package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/stenstad/inkwell/internal/build"
	"github.com/stenstad/inkwell/internal/config"
)

// BuildCmd implements the 'build' command: one synchronous batch build.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory, overriding the configured one"`
	Cache  string `help:"Page cache database path (omit to render everything)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}

	opts := []build.Option{}
	if b.Cache != "" {
		cache, err := build.OpenPageCache(b.Cache)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()
		opts = append(opts, build.WithCache(cache))
	}

	report, err := build.New(root.SiteRoot(), cfg, opts...).Build(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Built %d pages (%d posts, %d tags) into %s in %s\n",
		report.Items, report.Posts, len(report.Tags), report.OutputDir,
		report.Duration.Round(time.Millisecond))
	return nil
}
