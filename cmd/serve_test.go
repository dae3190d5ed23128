package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, root string, ignored []string, debounce time.Duration, rebuild func()) {
	t.Helper()
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	require.NoError(t, watchTree(watcher, root, ignored, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		watcher.Close()
	})
	go watchLoop(ctx, watcher, ignored, debounce, zerolog.Nop(), rebuild)
}

func TestWatchLoopDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))

	var calls int32
	startWatch(t, root, []string{out}, 100*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "page.md"), []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return atomic.LoadInt32(&calls) > 1 }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestWatchLoopSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))

	var calls int32
	startWatch(t, root, []string{out}, 20*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("built"), 0o644))
	assert.Never(t, func() bool { return atomic.LoadInt32(&calls) > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestWatchLoopRunsRebuildsOneAtATime(t *testing.T) {
	root := t.TempDir()

	var running, maxRunning, calls int32
	startWatch(t, root, nil, 10*time.Millisecond, func() {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(150 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&calls, 1)
	})

	// Each write lands after the debounce but while a rebuild is running.
	for i := 0; i < 4; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "page.md"), []byte{byte('a' + i)}, 0o644))
		time.Sleep(50 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestIsIgnored(t *testing.T) {
	ignored := []string{filepath.Join("docs", ".docsite", "dist")}
	assert.True(t, isIgnored(filepath.Join("docs", ".docsite", "dist"), ignored))
	assert.True(t, isIgnored(filepath.Join("docs", ".docsite", "dist", "index.html"), ignored))
	assert.False(t, isIgnored(filepath.Join("docs", ".docsite", "distribution.md"), ignored))
	assert.False(t, isIgnored(filepath.Join("docs", "install.md"), nil))
}
