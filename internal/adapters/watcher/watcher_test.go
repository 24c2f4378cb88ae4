package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/watcher"
	"go.trai.ch/quill/internal/core/ports"
)

// nextEvent waits for an event whose path satisfies want.
func nextEvent(t *testing.T, events <-chan ports.WatchEvent, want func(string) bool) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "event stream closed")
			if want(e.Path) {
				return e
			}
		case <-timeout:
			t.Fatal("timed out waiting for watch event")
		}
	}
}

func stream(w *watcher.Watcher) <-chan ports.WatchEvent {
	ch := make(chan ports.WatchEvent)
	go func() {
		defer close(ch)
		for e := range w.Events() {
			ch <- e
		}
	}()
	return ch
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "style"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dist"), 0o750))

	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, w.Start(t.Context(), root, filepath.Join(root, "dist")))
	events := stream(w)

	// Writes to ignored directories are dropped, so the css event is the first match.
	require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "prose.css"), []byte("x"), 0o600))
	target := filepath.Join(root, "style", "style.css")
	require.NoError(t, os.WriteFile(target, []byte("body{}"), 0o600))

	e := nextEvent(t, events, func(p string) bool {
		require.NotEqual(t, filepath.Join(root, "dist", "prose.css"), p)
		return p == target
	})
	require.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, e.Operation)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, w.Start(t.Context(), root))
	events := stream(w)

	dir := filepath.Join(root, "templates")
	require.NoError(t, os.Mkdir(dir, 0o750))
	nextEvent(t, events, func(p string) bool { return p == dir })

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	file := filepath.Join(dir, "app.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>"), 0o600))
	nextEvent(t, events, func(p string) bool { return p == file })
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
