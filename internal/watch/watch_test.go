package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/sqlprism/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWatcher starts w in the background and returns a channel of reported
// paths.
func runWatcher(t *testing.T, w *Watcher, paths []string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, paths, func(p string) {
			select {
			case changed <- p:
			case <-ctx.Done():
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return changed
}

// touchUntilReported rewrites path until the watcher reports want.
func touchUntilReported(t *testing.T, changed <-chan string, path, want string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("select 1"), 0o600)
		select {
		case got := <-changed:
			return got == want
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	w := New(WithDebounce(10*time.Millisecond), WithLogger(testutil.NewTestLogger(t)))
	changed := runWatcher(t, w, []string{file})

	touchUntilReported(t, changed, file, file)
}

func TestWatcher_DirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	file := filepath.Join(sub, "model.sql")

	w := New(WithDebounce(10*time.Millisecond))
	changed := runWatcher(t, w, []string{dir})

	touchUntilReported(t, changed, file, file)
}

func TestWatcher_CallbacksAreSerial(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.sql"), filepath.Join(dir, "b.sql"), filepath.Join(dir, "c.sql")}

	var active, maxActive, calls atomic.Int32
	onChange := func(string) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		calls.Add(1)
		active.Add(-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := New(WithDebounce(time.Millisecond))
	go func() { done <- w.Run(ctx, []string{dir}, onChange) }()

	assert.Eventually(t, func() bool {
		for _, f := range files {
			_ = os.WriteFile(f, []byte("select 1"), 0o600)
		}
		return calls.Load() >= 6
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, active.Load())
	after := calls.Load()

	for _, f := range files {
		_ = os.WriteFile(f, []byte("select 2"), 0o600)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no callbacks after Run returns")
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestWatcher_Wanted(t *testing.T) {
	w := New()
	tg := targets{
		files: map[string]bool{"/p/a.txt": true},
		dirs:  map[string]bool{"/q": true},
	}

	assert.True(t, w.wanted("/p/a.txt", tg))
	assert.False(t, w.wanted("/p/b.sql", tg))
	assert.True(t, w.wanted("/q/c.sql", tg))
	assert.False(t, w.wanted("/q/c.txt", tg))
	assert.False(t, w.wanted("/q/sub/c.sql", tg))
}

func TestWatcher_MissingPath(t *testing.T) {
	w := New()
	err := w.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.sql")}, func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
