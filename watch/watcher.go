// Package watch re-runs synchronization when ontology documents change.
//
// The watcher observes the directories the graph patterns resolve into and
// debounces bursts of filesystem events (editors typically write a file
// several times per save) into a single trigger.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long to wait for further changes before triggering.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback when watched ontology documents change.
type Watcher struct {
	fsw      *fsnotify.Watcher
	patterns []string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher over the given graph file patterns. Each pattern's
// static base directory is watched recursively enough for ontology layouts:
// the base directory itself plus any existing subdirectories.
func New(patterns []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no graph patterns to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		patterns: patterns,
		debounce: debounce,
		logger:   logger,
	}

	if err := w.addRoots(); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// addRoots registers each pattern's static base directory tree.
func (w *Watcher) addRoots() error {
	seen := make(map[string]struct{})

	for _, pattern := range w.patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		if base == "." || base == "" {
			base = "."
		}

		err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			return w.fsw.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", base, err)
		}
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	w.logger.Debug("Watching ontology directories", "count", len(dirs))
	return nil
}

// matches reports whether a changed path is covered by any graph pattern.
func (w *Watcher) matches(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range w.patterns {
		ok, err := doublestar.Match(filepath.ToSlash(pattern), slashed)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Run blocks, invoking fn after each debounced burst of matching changes,
// until ctx is cancelled. Errors from fn are logged, not fatal: the next
// change triggers another attempt.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("filesystem watcher closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.logger.Debug("Ontology document changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("filesystem watcher closed")
			}
			w.logger.Warn("Filesystem watcher error", "error", err)

		case <-fire:
			timer = nil
			fire = nil
			w.logger.Info("Ontology changed, re-running sync")
			if err := fn(ctx); err != nil {
				w.logger.Error("Sync after change failed", "error", err)
			}
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
