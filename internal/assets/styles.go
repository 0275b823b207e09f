package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/logfields"
)

// StylePipeline compiles SCSS entry points with an external sass binary
// and minifies the result in-process. Compiler failures surface as build
// errors with the tool's stderr attached.
type StylePipeline struct {
	root string
	cfg  config.StylesConfig
	min  *minify.M
}

// NewStylePipeline creates a pipeline rooted at the site directory.
func NewStylePipeline(root string, cfg config.StylesConfig) *StylePipeline {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return &StylePipeline{root: root, cfg: cfg, min: m}
}

// BuildAll compiles every configured sheet into the output directory.
func (p *StylePipeline) BuildAll(ctx context.Context, outDir string) error {
	for _, sheet := range p.cfg.Sheets {
		if err := p.buildSheet(ctx, sheet, outDir); err != nil {
			return err
		}
	}
	return nil
}

func (p *StylePipeline) buildSheet(ctx context.Context, sheet config.StyleSheet, outDir string) error {
	src := filepath.Join(p.root, sheet.Source)
	compiled, err := p.compile(ctx, src)
	if err != nil {
		return fmt.Errorf("compile %s: %w", sheet.Source, err)
	}

	minified, err := p.minifyCSS(compiled)
	if err != nil {
		return fmt.Errorf("minify %s: %w", sheet.Source, err)
	}

	dst := filepath.Join(outDir, sheet.Target)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(dst, minified, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", sheet.Target, err)
	}
	slog.Debug("stylesheet built", logfields.File(sheet.Source), logfields.Output(sheet.Target))
	return nil
}

// compile shells out to the sass binary, which owns SCSS semantics and
// vendor-prefix handling. Compiled CSS arrives on stdout.
func (p *StylePipeline) compile(ctx context.Context, src string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.SassBin, "--no-source-map", src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", p.cfg.SassBin, msg, err)
		}
		return nil, fmt.Errorf("%s: %w", p.cfg.SassBin, err)
	}
	return stdout.Bytes(), nil
}

func (p *StylePipeline) minifyCSS(in []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := p.min.Minify("text/css", &out, bytes.NewReader(in)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
