package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/stenstad/inkwell/internal/build"
	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/metrics"
	"github.com/stenstad/inkwell/internal/preview"
)

// ServeCmd implements the 'serve' command: a local preview server with
// rebuild-on-change and scheduled rebuilds for future-dated posts.
type ServeCmd struct {
	Port    int    `short:"p" help:"Preview server port, overriding the configured one"`
	Metrics bool   `help:"Expose Prometheus metrics at /metrics"`
	Cache   string `help:"Page cache database path (defaults to in-memory)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Metrics {
		cfg.Serve.Metrics = true
	}

	cachePath := s.Cache
	if cachePath == "" {
		cachePath = ":memory:"
	}
	cache, err := build.OpenPageCache(cachePath)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	rec := metrics.NewPrometheusRecorder()
	builder := build.New(root.SiteRoot(), cfg,
		build.WithRecorder(rec),
		build.WithCache(cache),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Serving preview on http://localhost:%d\n", cfg.Serve.Port)
	return preview.NewServer(root.SiteRoot(), cfg, builder, rec).Run(ctx)
}
