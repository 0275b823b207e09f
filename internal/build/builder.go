// Package build orchestrates one synchronous build pass: load content,
// derive collections, render pages, compile styles, copy passthrough
// assets, and emit feeds.
package build

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stenstad/inkwell/internal/assets"
	"github.com/stenstad/inkwell/internal/collections"
	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/content"
	"github.com/stenstad/inkwell/internal/gitinfo"
	"github.com/stenstad/inkwell/internal/logfields"
	"github.com/stenstad/inkwell/internal/metrics"
	"github.com/stenstad/inkwell/internal/render"
)

// Builder runs complete site builds. Stages execute sequentially; the
// first failing stage aborts the build.
type Builder struct {
	root  string
	cfg   *config.Config
	rec   metrics.Recorder
	cache *PageCache
	now   func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder installs a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(b *Builder) { b.rec = rec }
}

// WithCache installs a page cache used to skip re-rendering unchanged
// Markdown bodies.
func WithCache(cache *PageCache) Option {
	return func(b *Builder) { b.cache = cache }
}

// WithClock overrides the publication clock.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// New creates a builder for the site rooted at root.
func New(root string, cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{root: root, cfg: cfg, rec: metrics.Nop{}, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Report summarizes a finished build.
type Report struct {
	BuildID   string
	OutputDir string
	Items     int
	Posts     int
	Tags      []string
	Rendered  int
	CacheHits int
	Duration  time.Duration
}

// state carries intermediate results between stages of one build.
type state struct {
	outDir string
	items  []*content.Item
	posts  []*content.Item
	tags   []string
	byTag  map[string][]*content.Item
	engine *render.Engine
	md     *render.Markdown
	report *Report
}

// Build runs one full build pass.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	started := b.now()
	buildID := uuid.NewString()
	st := &state{
		outDir: b.outputDir(),
		md:     render.NewMarkdown(),
		report: &Report{BuildID: buildID},
	}
	st.report.OutputDir = st.outDir

	slog.Info("starting build", logfields.BuildID(buildID), logfields.Output(st.outDir))

	stages := []struct {
		name string
		fn   func(context.Context, *state) error
	}{
		{"prepare", b.stagePrepare},
		{"load", b.stageLoad},
		{"collect", b.stageCollect},
		{"render", b.stageRender},
		{"styles", b.stageStyles},
		{"passthrough", b.stagePassthrough},
		{"feeds", b.stageFeeds},
	}
	for _, stage := range stages {
		if err := b.runStage(ctx, stage.name, st, stage.fn); err != nil {
			b.rec.IncBuildOutcome(metrics.OutcomeFailure)
			return nil, fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}

	st.report.Duration = time.Since(started)
	b.rec.ObserveBuildDuration(st.report.Duration)
	b.rec.IncBuildOutcome(metrics.OutcomeSuccess)
	slog.Info("build finished",
		logfields.BuildID(buildID),
		logfields.Count(st.report.Items),
		logfields.DurationMS(float64(st.report.Duration.Milliseconds())))
	return st.report, nil
}

func (b *Builder) runStage(ctx context.Context, name string, st *state, fn func(context.Context, *state) error) error {
	start := time.Now()
	err := fn(ctx, st)
	elapsed := time.Since(start)
	b.rec.ObserveStageDuration(name, elapsed)
	if err != nil {
		slog.Error("stage failed", logfields.Stage(name), logfields.Error(err))
		return err
	}
	slog.Debug("stage finished", logfields.Stage(name), logfields.DurationMS(float64(elapsed.Milliseconds())))
	return nil
}

func (b *Builder) outputDir() string {
	dir := b.cfg.Output.Directory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(b.root, dir)
	}
	return dir
}

func (b *Builder) stagePrepare(_ context.Context, st *state) error {
	if b.cfg.Output.Clean {
		if err := os.RemoveAll(st.outDir); err != nil {
			return fmt.Errorf("clean output dir: %w", err)
		}
	}
	if err := os.MkdirAll(st.outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

func (b *Builder) stageLoad(_ context.Context, st *state) error {
	items, err := content.NewLoader(b.root, b.cfg).WithClock(b.now).Load()
	if err != nil {
		return err
	}

	// Refine mtimes from git history when the site lives in a repo.
	if history, err := gitinfo.Open(b.root); err == nil {
		history.Apply(items)
	} else if !errors.Is(err, gitinfo.ErrNoRepository) {
		slog.Warn("git history unavailable", logfields.Error(err))
	}

	st.items = items
	st.report.Items = len(items)
	return nil
}

func (b *Builder) stageCollect(_ context.Context, st *state) error {
	st.posts = collections.Posts(st.items)
	st.tags = collections.Tags(st.items)
	st.byTag = collections.ByTag(st.items)
	st.report.Posts = len(st.posts)
	st.report.Tags = st.tags
	return nil
}

func (b *Builder) stageRender(ctx context.Context, st *state) error {
	engine, err := render.NewEngine(b.root, b.cfg)
	if err != nil {
		return err
	}
	st.engine = engine

	if err := b.renderBodies(ctx, st); err != nil {
		return err
	}

	site := render.Site{
		Title:       b.cfg.Site.Title,
		Description: b.cfg.Site.Description,
		BaseURL:     b.cfg.Site.BaseURL,
		Author:      b.cfg.Site.Author,
		Tags:        st.tags,
	}

	// Home page.
	if err := b.renderToFile(st, "index", "", render.PageData{Site: site, Posts: st.posts}); err != nil {
		return err
	}

	// Posts and pages.
	for _, it := range st.items {
		layout := "page"
		if it.Kind == content.KindPost {
			layout = "post"
		}
		data := render.PageData{Site: site, Item: it, Posts: st.posts}
		if err := b.renderToFile(st, layout, it.Permalink(), data); err != nil {
			return err
		}
	}

	// Tag listing pages, when the site ships a tag layout.
	if st.engine.Has("tag") {
		for _, tag := range st.tags {
			data := render.PageData{Site: site, Tag: tag, Tagged: st.byTag[tag], Posts: st.posts}
			if err := b.renderToFile(st, "tag", "/tags/"+content.Slugify(tag)+"/", data); err != nil {
				return err
			}
		}
	} else if len(st.tags) > 0 {
		slog.Debug("no tag layout, skipping tag pages", logfields.Count(len(st.tags)))
	}
	return nil
}

// renderBodies converts Markdown to HTML, consulting the page cache.
func (b *Builder) renderBodies(ctx context.Context, st *state) error {
	for _, it := range st.items {
		fp := Fingerprint(it.Body)
		if b.cache != nil {
			if html, ok, err := b.cache.Get(ctx, it.SourcePath, fp); err != nil {
				slog.Warn("page cache read failed", logfields.File(it.SourcePath), logfields.Error(err))
			} else if ok {
				it.HTML = template.HTML(html)
				st.report.CacheHits++
				continue
			}
		}

		html, err := st.md.Convert(it.Body)
		if err != nil {
			return fmt.Errorf("render %s: %w", it.SourcePath, err)
		}
		it.HTML = html
		st.report.Rendered++

		if b.cache != nil {
			if err := b.cache.Put(ctx, it.SourcePath, fp, []byte(html)); err != nil {
				slog.Warn("page cache write failed", logfields.File(it.SourcePath), logfields.Error(err))
			}
		}
	}
	return nil
}

func (b *Builder) renderToFile(st *state, layout, permalink string, data render.PageData) error {
	out, err := st.engine.Render(layout, data)
	if err != nil {
		return err
	}
	dir := filepath.Join(st.outDir, filepath.FromSlash(permalink))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "index.html"), out, 0o644)
}

func (b *Builder) stageStyles(ctx context.Context, st *state) error {
	if len(b.cfg.Styles.Sheets) == 0 {
		return nil
	}
	return assets.NewStylePipeline(b.root, b.cfg.Styles).BuildAll(ctx, st.outDir)
}

func (b *Builder) stagePassthrough(_ context.Context, st *state) error {
	return assets.CopyPassthrough(b.root, st.outDir, b.cfg.Passthrough)
}

func (b *Builder) stageFeeds(_ context.Context, st *state) error {
	return writeFeeds(st.outDir, b.cfg.Site, st.items, st.posts, b.now())
}
