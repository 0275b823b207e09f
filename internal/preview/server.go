// Package preview runs the local development server: it serves the
// generated site, rebuilds on source changes, and periodically rebuilds
// so future-dated posts publish when their time arrives.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/stenstad/inkwell/internal/build"
	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/logfields"
	"github.com/stenstad/inkwell/internal/metrics"
)

// debounceQuiet is the quiet period applied to file change bursts.
const debounceQuiet = 250 * time.Millisecond

// buildStatus tracks the most recent build outcome for /healthz.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastBuild    time.Time
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess(at time.Time) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.lastBuild = at
	bs.hasGoodBuild = true
}

func (bs *buildStatus) snapshot() (err error, lastBuild time.Time, hasGoodBuild bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError, bs.lastBuild, bs.hasGoodBuild
}

// Server is the preview server.
type Server struct {
	root           string
	cfg            *config.Config
	builder        *build.Builder
	rec            metrics.Recorder
	metricsHandler http.Handler // nil disables /metrics
	status         buildStatus
}

// NewServer creates a preview server for the site at root. When rec is a
// PrometheusRecorder and metrics are enabled, its handler is mounted at
// /metrics.
func NewServer(root string, cfg *config.Config, builder *build.Builder, rec metrics.Recorder) *Server {
	s := &Server{root: root, cfg: cfg, builder: builder, rec: rec}
	if cfg.Serve.Metrics {
		if pr, ok := rec.(*metrics.PrometheusRecorder); ok {
			s.metricsHandler = pr.Handler()
		}
	}
	return s
}

// Run builds once, then serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	report, err := s.builder.Build(ctx)
	if err != nil {
		// Keep serving; the watcher lets the author fix the error live.
		slog.Error("initial build failed", logfields.Error(err))
		s.status.setError(err)
	} else {
		s.status.setSuccess(time.Now())
	}
	outDir := s.outputDir(report)

	watcher, err := newSourceWatcher(s.root, s.watchDirs())
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	changed := make(chan struct{}, 1)
	rebuild := make(chan metrics.RebuildReason, 1)

	go watchLoop(ctx, watcher, changed)
	go debounce(ctx, changed, debounceQuiet, func() {
		select {
		case rebuild <- metrics.RebuildFileChange:
		default:
		}
	})
	go s.rebuildWorker(ctx, rebuild)

	scheduler, err := s.startScheduler(rebuild)
	if err != nil {
		return err
	}
	defer func() { _ = scheduler.Shutdown() }()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Serve.Port),
		Handler:           s.routes(outDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("preview server started", logfields.Port(s.cfg.Serve.Port), logfields.Output(outDir))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startScheduler schedules periodic rebuilds so posts dated in the
// future appear once their publication time passes.
func (s *Server) startScheduler(rebuild chan<- metrics.RebuildReason) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.Serve.RebuildEvery.Std()),
		gocron.NewTask(func() {
			select {
			case rebuild <- metrics.RebuildScheduled:
			default:
			}
		}),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

func (s *Server) rebuildWorker(ctx context.Context, rebuild <-chan metrics.RebuildReason) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-rebuild:
			s.rec.IncRebuild(reason)
			slog.Info("rebuilding site", slog.String("reason", string(reason)))
			if _, err := s.builder.Build(ctx); err != nil {
				slog.Error("rebuild failed", logfields.Error(err))
				s.status.setError(err)
				continue
			}
			s.status.setSuccess(time.Now())
		}
	}
}

func (s *Server) routes(outDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(outDir)))
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	err, lastBuild, hasGoodBuild := s.status.snapshot()
	resp := map[string]any{
		"status":     "ok",
		"last_build": lastBuild.Format(time.RFC3339),
	}
	code := http.StatusOK
	if err != nil {
		resp["status"] = "build_error"
		resp["error"] = err.Error()
		if !hasGoodBuild {
			code = http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) watchDirs() []string {
	return []string{s.cfg.Content.Dir, s.cfg.Content.LayoutsDir, "styles", "static"}
}

// outputDir resolves where the built site landed, falling back to the
// configured directory when the initial build failed.
func (s *Server) outputDir(report *build.Report) string {
	if report != nil {
		return report.OutputDir
	}
	dir := s.cfg.Output.Directory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.root, dir)
	}
	return dir
}
