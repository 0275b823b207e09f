package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebounce_CoalescesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	var fired atomic.Int32
	go debounce(ctx, changed, 30*time.Millisecond, func() { fired.Add(1) })

	// A burst of notifications should collapse into one rebuild.
	for range 5 {
		select {
		case changed <- struct{}{}:
		default:
		}
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 10*time.Millisecond)

	// A later change fires again.
	changed <- struct{}{}
	require.Eventually(t, func() bool { return fired.Load() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestBuildStatus_TransitionsAndSnapshot(t *testing.T) {
	var bs buildStatus

	err, _, good := bs.snapshot()
	require.NoError(t, err)
	require.False(t, good)

	bs.setError(errors.New("boom"))
	err, _, good = bs.snapshot()
	require.Error(t, err)
	require.False(t, good)

	at := time.Now()
	bs.setSuccess(at)
	err, last, good := bs.snapshot()
	require.NoError(t, err)
	require.True(t, good)
	require.WithinDuration(t, at, last, time.Second)

	// A later failure keeps hasGoodBuild true so /healthz stays 200.
	bs.setError(errors.New("later"))
	err, _, good = bs.snapshot()
	require.Error(t, err)
	require.True(t, good)
}

func TestHandleHealth_ReportsBuildState(t *testing.T) {
	s := &Server{}
	s.status.setSuccess(time.Now())

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])

	s.status.setError(errors.New("broken layout"))
	rec = httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code) // previous good build still being served

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "build_error", resp["status"])
	require.Contains(t, resp["error"], "broken layout")
}

func TestHandleHealth_NoGoodBuildIsUnavailable(t *testing.T) {
	s := &Server{}
	s.status.setError(errors.New("never built"))

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 503, rec.Code)
}

func TestNewSourceWatcher_SkipsMissingDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content", "posts"), 0o750))

	watcher, err := newSourceWatcher(root, []string{"content", "layouts", "styles"})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	// Both existing directories are registered, missing ones ignored.
	require.Contains(t, watcher.WatchList(), filepath.Join(root, "content"))
	require.Contains(t, watcher.WatchList(), filepath.Join(root, "content", "posts"))
}
