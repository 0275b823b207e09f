package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/content"
)

func TestMarkdown_ConvertsGFM(t *testing.T) {
	md := NewMarkdown()

	out, err := md.Convert([]byte("# Hi\n\nSome ~~old~~ new text.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), `<h1 id="hi">Hi</h1>`)
	require.Contains(t, string(out), "<del>old</del>")
}

func TestEngine_RendersLayoutWithFilters(t *testing.T) {
	root := t.TempDir()
	layouts := filepath.Join(root, "layouts")
	require.NoError(t, os.MkdirAll(layouts, 0o750))
	layout := `<h1>{{ .Item.Meta.Title }}</h1>` +
		`<span>{{ readTime (printf "%s" .Item.HTML) }} min</span>` +
		`<time>{{ formatDate "2021-04-16" }}</time>` +
		`{{ image "me.jpg" "portrait" }}`
	require.NoError(t, os.WriteFile(filepath.Join(layouts, "post.html"), []byte(layout), 0o644))

	cfg := &config.Config{
		Content: config.ContentConfig{LayoutsDir: "layouts"},
		Site:    config.SiteConfig{ImagePath: "/images"},
	}
	engine, err := NewEngine(root, cfg)
	require.NoError(t, err)
	require.True(t, engine.Has("post"))
	require.False(t, engine.Has("missing"))

	item := &content.Item{
		Meta: content.Meta{Title: "Hello"},
		HTML: "<p>body</p>",
	}
	out, err := engine.Render("post", PageData{Item: item})
	require.NoError(t, err)
	require.Contains(t, string(out), "<h1>Hello</h1>")
	require.Contains(t, string(out), "<span>1 min</span>")
	require.Contains(t, string(out), "<time>April 16, 2021</time>")
	require.Contains(t, string(out), `<img src="/images/me.jpg" alt="portrait" loading="lazy">`)
}
