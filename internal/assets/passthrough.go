// Package assets handles the non-content build outputs: passthrough
// file copying and the stylesheet pipeline.
package assets

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stenstad/inkwell/internal/logfields"
)

// CopyPassthrough copies each declared entry from the site root into the
// output directory, preserving relative paths. An entry may be a file, a
// directory (copied recursively), or a glob pattern. Entries that match
// nothing are logged and skipped; a missing asset is not a build error.
func CopyPassthrough(root, outDir string, entries []string) error {
	for _, entry := range entries {
		matches, err := filepath.Glob(filepath.Join(root, entry))
		if err != nil {
			return fmt.Errorf("bad passthrough pattern %q: %w", entry, err)
		}
		if len(matches) == 0 {
			slog.Warn("passthrough entry matched nothing", logfields.Path(entry))
			continue
		}
		for _, match := range matches {
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return fmt.Errorf("resolve passthrough path %q: %w", match, err)
			}
			dst := filepath.Join(outDir, rel)
			info, err := os.Stat(match)
			if err != nil {
				return err
			}
			if info.IsDir() {
				err = copyDir(match, dst)
			} else {
				err = copyFile(match, dst)
			}
			if err != nil {
				return fmt.Errorf("copy passthrough %q: %w", rel, err)
			}
			slog.Debug("copied passthrough", logfields.Path(rel))
		}
	}
	return nil
}

// copyDir recursively copies a directory tree.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
