// Package watch reports changes to SQL files on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches files and directories and reports changed files in
// debounced batches.
type Watcher struct {
	debounce time.Duration
	exts     []string
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before changes are reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions sets the file extensions reported inside watched
// directories. Files named explicitly are reported regardless.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		if len(exts) > 0 {
			w.exts = exts
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		debounce: DefaultDebounce,
		exts:     []string{".sql"},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// targets is the set of paths a Run reports on.
type targets struct {
	files map[string]bool
	dirs  map[string]bool
}

// Run watches paths until ctx is cancelled, calling onChange once per
// changed file after each quiet period. onChange runs on the calling
// goroutine, one call at a time, and never after Run returns. Directories are watched
// recursively. Single files are watched through their parent directory so
// editors that replace files on save are still seen.
func (w *Watcher) Run(ctx context.Context, paths []string, onChange func(path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	t, err := w.add(fw, paths)
	if err != nil {
		return err
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	// quiet is nil while nothing is pending.
	var quiet <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.wanted(name, t) {
				continue
			}

			pending[name] = struct{}{}
			timer.Reset(w.debounce)
			quiet = timer.C

		case <-quiet:
			quiet = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			clear(pending)

			slices.Sort(batch)
			for _, p := range batch {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Debug("file changed", "file", p)
				onChange(p)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) add(fw *fsnotify.Watcher, paths []string) (targets, error) {
	t := targets{files: make(map[string]bool), dirs: make(map[string]bool)}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return t, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return t, fmt.Errorf("failed to watch %s: %w", p, err)
		}

		if info.IsDir() {
			if err := watchDirRecursive(fw, abs, t.dirs); err != nil {
				return t, fmt.Errorf("failed to watch %s: %w", p, err)
			}
			continue
		}

		t.files[abs] = true
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			return t, fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	w.logger.Debug("watching", "files", len(t.files), "dirs", len(t.dirs))
	return t, nil
}

func (w *Watcher) wanted(name string, t targets) bool {
	if t.files[name] {
		return true
	}
	return t.dirs[filepath.Dir(name)] && slices.Contains(w.exts, filepath.Ext(name))
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(fw *fsnotify.Watcher, dir string, seen map[string]bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			seen[path] = true
			return fw.Add(path)
		}
		return nil
	})
}
