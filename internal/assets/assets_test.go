package assets

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stenstad/inkwell/internal/config"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCopyPassthrough_FilesDirsAndGlobs(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	write(t, root, "manifest.json", "{}")
	write(t, root, "static/img/me.jpg", "jpg")
	write(t, root, "static/fonts/mono.woff2", "woff")
	write(t, root, "resume-2024.pdf", "pdf")

	err := CopyPassthrough(root, out, []string{"manifest.json", "static", "*.pdf"})
	require.NoError(t, err)

	for _, rel := range []string{
		"manifest.json",
		"static/img/me.jpg",
		"static/fonts/mono.woff2",
		"resume-2024.pdf",
	} {
		_, statErr := os.Stat(filepath.Join(out, rel))
		require.NoError(t, statErr, "expected %s in output", rel)
	}
}

func TestCopyPassthrough_MissingEntryIsNotAnError(t *testing.T) {
	require.NoError(t, CopyPassthrough(t.TempDir(), t.TempDir(), []string{"nope.txt"}))
}

func TestCopyPassthrough_PreservesFileContent(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	write(t, root, "resume.pdf", "binary-ish content")

	require.NoError(t, CopyPassthrough(root, out, []string{"resume.pdf"}))
	got, err := os.ReadFile(filepath.Join(out, "resume.pdf"))
	require.NoError(t, err)
	require.Equal(t, "binary-ish content", string(got))
}

// fakeSass writes a stub executable that echoes its input file, standing
// in for the real compiler in tests.
func fakeSass(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "sass")
	script := "#!/bin/sh\nshift\ncat \"$1\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestStylePipeline_CompilesAndMinifies(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	write(t, root, "styles/main.scss", "body {\n  color: #ffffff;\n}\n")

	cfg := config.StylesConfig{
		SassBin: fakeSass(t),
		Sheets:  []config.StyleSheet{{Source: "styles/main.scss", Target: "css/main.css"}},
	}
	p := NewStylePipeline(root, cfg)
	require.NoError(t, p.BuildAll(context.Background(), out))

	got, err := os.ReadFile(filepath.Join(out, "css", "main.css"))
	require.NoError(t, err)
	require.Equal(t, "body{color:#fff}", string(got))
}

func TestStylePipeline_MissingCompilerFailsBuild(t *testing.T) {
	root := t.TempDir()
	write(t, root, "styles/main.scss", "body { color: red; }")

	cfg := config.StylesConfig{
		SassBin: filepath.Join(t.TempDir(), "no-such-sass"),
		Sheets:  []config.StyleSheet{{Source: "styles/main.scss", Target: "css/main.css"}},
	}
	err := NewStylePipeline(root, cfg).BuildAll(context.Background(), t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "main.scss")
}
