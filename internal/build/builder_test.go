package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stenstad/inkwell/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixtureSite lays out a minimal but complete site source tree.
func fixtureSite(t *testing.T) (root string, cfg *config.Config) {
	root = t.TempDir()

	writeFile(t, root, "layouts/index.html",
		`<ul>{{ range .Posts }}<li>{{ .Meta.Title }}</li>{{ end }}</ul>`+
			`<nav>{{ range .Site.Tags }}<a>{{ . }}</a>{{ end }}</nav>`)
	writeFile(t, root, "layouts/post.html",
		`<article><h1>{{ .Item.Meta.Title }}</h1>`+
			`<p>{{ readTime (printf "%s" .Item.HTML) }} min · {{ formatDate .Item.Meta.Date }}</p>`+
			`{{ .Item.HTML }}</article>`)
	writeFile(t, root, "layouts/page.html", `<main>{{ .Item.HTML }}</main>`)
	writeFile(t, root, "layouts/tag.html",
		`<h1>{{ .Tag }}</h1><ul>{{ range .Tagged }}<li>{{ .Meta.Title }}</li>{{ end }}</ul>`)

	writeFile(t, root, "content/posts/hello-world.md",
		"---\ntitle: Hello World\ndate: 2021-04-16\ntags: [go, posts]\n---\nFirst post body.\n")
	writeFile(t, root, "content/posts/second.md",
		"---\ntitle: Second\ndate: 2022-02-02\ntags: [go, web]\n---\nAnother body.\n")
	writeFile(t, root, "content/resume.md", "---\ntitle: Resume\n---\nWork history.\n")

	writeFile(t, root, "static/manifest.json", "{}")

	cfg = &config.Config{
		Site: config.SiteConfig{
			Title:     "Test Blog",
			BaseURL:   "https://example.com",
			ImagePath: "/images",
		},
		Content:     config.ContentConfig{Dir: "content", PostsDir: "posts", LayoutsDir: "layouts"},
		Passthrough: []string{"static"},
		Output:      config.OutputConfig{Directory: "public", Clean: true},
	}
	return root, cfg
}

func fixedNow() time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestBuild_ProducesCompleteSite(t *testing.T) {
	root, cfg := fixtureSite(t)

	report, err := New(root, cfg, WithClock(fixedNow)).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Items)
	require.Equal(t, 2, report.Posts)
	require.Equal(t, []string{"go", "web"}, report.Tags)

	out := filepath.Join(root, "public")
	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "<li>Second</li>")
	require.Contains(t, string(index), "<li>Hello World</li>")
	require.Contains(t, string(index), "<a>go</a>")
	require.NotContains(t, string(index), "<a>posts</a>")

	post, err := os.ReadFile(filepath.Join(out, "posts", "hello-world", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(post), "<h1>Hello World</h1>")
	require.Contains(t, string(post), "1 min · April 16, 2021")
	require.Contains(t, string(post), "<p>First post body.</p>")

	page, err := os.ReadFile(filepath.Join(out, "resume", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<p>Work history.</p>")

	tagPage, err := os.ReadFile(filepath.Join(out, "tags", "go", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(tagPage), "<h1>go</h1>")
	require.Contains(t, string(tagPage), "<li>Hello World</li>")
	require.Contains(t, string(tagPage), "<li>Second</li>")

	_, err = os.Stat(filepath.Join(out, "static", "manifest.json"))
	require.NoError(t, err)

	rss, err := os.ReadFile(filepath.Join(out, "rss.xml"))
	require.NoError(t, err)
	require.Contains(t, string(rss), "<title>Test Blog</title>")
	require.Contains(t, string(rss), "https://example.com/posts/hello-world/")

	sitemap, err := os.ReadFile(filepath.Join(out, "sitemap.xml"))
	require.NoError(t, err)
	require.Contains(t, string(sitemap), "<loc>https://example.com/resume/</loc>")
}

func TestBuild_CacheSkipsUnchangedBodies(t *testing.T) {
	root, cfg := fixtureSite(t)
	cache, err := OpenPageCache(":memory:")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	builder := New(root, cfg, WithClock(fixedNow), WithCache(cache))

	first, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, first.Rendered)
	require.Equal(t, 0, first.CacheHits)

	second, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, second.Rendered)
	require.Equal(t, 3, second.CacheHits)

	// Touching one body invalidates only that entry.
	writeFile(t, root, "content/posts/second.md",
		"---\ntitle: Second\ndate: 2022-02-02\ntags: [go, web]\n---\nEdited body.\n")
	third, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, third.Rendered)
	require.Equal(t, 2, third.CacheHits)
}

func TestBuild_MissingLayoutFails(t *testing.T) {
	root, cfg := fixtureSite(t)
	require.NoError(t, os.Remove(filepath.Join(root, "layouts", "post.html")))

	_, err := New(root, cfg, WithClock(fixedNow)).Build(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "post")
}

func TestBuild_CleanRemovesStaleOutput(t *testing.T) {
	root, cfg := fixtureSite(t)
	writeFile(t, root, "public/stale.html", "old")

	_, err := New(root, cfg, WithClock(fixedNow)).Build(context.Background())
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(root, "public", "stale.html"))
	require.True(t, os.IsNotExist(statErr))
}
