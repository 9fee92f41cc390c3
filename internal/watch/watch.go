// Package watch re-runs an action when input files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoPaths is returned when nothing is given to watch.
var ErrNoPaths = errors.New("no paths to watch")

// ChangeFunc handles one settled batch of changes. Changed paths are sorted
// and unique.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher waits for writes to a set of files or directories and calls its
// ChangeFunc once the writes have been quiet for the debounce interval. Calls
// never overlap.
type Watcher struct {
	logger   *slog.Logger
	onChange ChangeFunc
	files    map[string]struct{}
	dirs     map[string]struct{}
	debounce time.Duration
}

// New creates a watcher over paths. Files are matched by name inside their
// parent directory so editors that replace files on save are still seen.
func New(paths []string, debounce time.Duration, onChange ChangeFunc, logger *slog.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	if onChange == nil {
		return nil, fmt.Errorf("watch: change handler is required")
	}
	if debounce <= 0 {
		return nil, fmt.Errorf("watch: debounce must be positive, got %s", debounce)
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		logger:   logger,
		onChange: onChange,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		debounce: debounce,
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			w.dirs[abs] = struct{}{}
		} else {
			w.files[abs] = struct{}{}
		}
	}
	return w, nil
}

// Run blocks until ctx is canceled, returning nil in that case.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("Failed to close file watcher", "error", closeErr)
		}
	}()

	for _, dir := range w.watchDirs() {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", "path", dir)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("File changed", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)

			if err := w.onChange(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("Change handler failed", "error", err, "files", changed)
			}
		}
	}
}

func (w *Watcher) watchDirs() []string {
	seen := make(map[string]struct{}, len(w.dirs)+len(w.files))
	for d := range w.dirs {
		seen[d] = struct{}{}
	}
	for f := range w.files {
		seen[filepath.Dir(f)] = struct{}{}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if _, ok := w.files[event.Name]; ok {
		return true
	}
	_, ok := w.dirs[filepath.Dir(event.Name)]
	return ok
}
