package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dennisonbertram/lgrep/internal/discover"
)

func newTestDiscovery(t *testing.T, root string) *discover.Discovery {
	t.Helper()
	d, err := discover.New(discover.Config{Root: root})
	require.NoError(t, err)
	return d
}

type batchCollector struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newBatchCollector() *batchCollector {
	return &batchCollector{fired: make(chan struct{}, 16)}
}

func (c *batchCollector) onBatch(paths []string) {
	c.mu.Lock()
	c.calls = append(c.calls, paths)
	c.mu.Unlock()
	c.fired <- struct{}{}
}

func (c *batchCollector) waitForBatch(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[len(c.calls)-1]
}

func TestWatcherFiresAfterDebounce(t *testing.T) {
	root := t.TempDir()
	d := newTestDiscovery(t, root)
	collector := newBatchCollector()

	w, err := New(root, d, collector.onBatch)
	require.NoError(t, err)
	w.SetDebounceInterval(50 * time.Millisecond)
	w.Start()
	defer w.Stop()

	target := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(target, []byte("package a"), 0o644))

	batch := collector.waitForBatch(t)
	assert.Contains(t, batch, target)
}

func TestWatcherCoalescesRapidChanges(t *testing.T) {
	root := t.TempDir()
	d := newTestDiscovery(t, root)
	collector := newBatchCollector()

	w, err := New(root, d, collector.onBatch)
	require.NoError(t, err)
	w.SetDebounceInterval(100 * time.Millisecond)
	w.Start()
	defer w.Stop()

	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "b.go")
	require.NoError(t, os.WriteFile(a, []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package b"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("package a // v2"), 0o644))

	batch := collector.waitForBatch(t)
	assert.ElementsMatch(t, []string{a, b}, batch)

	select {
	case <-collector.fired:
		t.Fatal("expected rapid changes to coalesce into a single batch")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresExcludedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	d := newTestDiscovery(t, root)
	collector := newBatchCollector()

	w, err := New(root, d, collector.onBatch)
	require.NoError(t, err)
	w.SetDebounceInterval(50 * time.Millisecond)
	w.Start()
	defer w.Stop()

	ignored := filepath.Join(root, "node_modules", "lib.go")
	require.NoError(t, os.WriteFile(ignored, []byte("package lib"), 0o644))

	tracked := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(tracked, []byte("package a"), 0o644))

	batch := collector.waitForBatch(t)
	assert.NotContains(t, batch, ignored)
	assert.Contains(t, batch, tracked)
}

func TestWatcherPauseAccumulatesAndResumeFlushes(t *testing.T) {
	root := t.TempDir()
	d := newTestDiscovery(t, root)
	collector := newBatchCollector()

	w, err := New(root, d, collector.onBatch)
	require.NoError(t, err)
	w.SetDebounceInterval(50 * time.Millisecond)
	w.Start()
	defer w.Stop()

	w.Pause()
	target := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(target, []byte("package a"), 0o644))

	select {
	case <-collector.fired:
		t.Fatal("callback fired while paused")
	case <-time.After(150 * time.Millisecond):
	}

	w.Resume()
	batch := collector.waitForBatch(t)
	assert.Contains(t, batch, target)
}

func TestWatcherStopFlushesSynchronously(t *testing.T) {
	root := t.TempDir()
	d := newTestDiscovery(t, root)
	collector := newBatchCollector()

	w, err := New(root, d, collector.onBatch)
	require.NoError(t, err)
	w.SetDebounceInterval(10 * time.Second) // long enough that only Stop's flush can fire it
	w.Start()

	target := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(target, []byte("package a"), 0o644))
	time.Sleep(50 * time.Millisecond) // let fsnotify deliver the event before Stop

	require.NoError(t, w.Stop())

	select {
	case <-collector.fired:
	default:
		t.Fatal("expected Stop to flush the pending batch")
	}
}
