package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stenstad/inkwell/internal/logfields"
)

// newSourceWatcher watches the site's source directories recursively.
// Directories created while watching are added on the fly.
func newSourceWatcher(root string, dirs []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		path := filepath.Join(root, dir)
		if err := addRecursive(watcher, path); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil // optional source dir, e.g. no styles configured
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// watchLoop forwards change notifications onto changed, tracking newly
// created directories. It returns when ctx is done or the watcher closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changed chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						slog.Warn("watch new directory failed", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			select {
			case changed <- struct{}{}:
			default: // a rebuild is already pending
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", logfields.Error(err))
		}
	}
}

// debounce coalesces bursts of change notifications, calling fire once
// per quiet period.
func debounce(ctx context.Context, changed <-chan struct{}, quiet time.Duration, fire func()) {
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-changed:
			if timer == nil {
				timer = time.NewTimer(quiet)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(quiet)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			fire()
		}
	}
}
