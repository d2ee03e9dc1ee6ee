// Package watch re-runs a callback when watched files change.
//
// Files are watched through their parent directories, so editors that save
// by writing a temporary file and renaming it over the original are still
// seen. Bursts of events for the same file are coalesced: the handler runs
// once the file has been quiet for the debounce interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/jsondoc/internal/logging"
)

// DefaultDebounce is the default quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Errors returned by the watcher.
var (
	// ErrWatcherClosed indicates the watcher was already closed.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrNotRegularFile indicates an attempt to watch a directory or device.
	ErrNotRegularFile = errors.New("not a regular file")
)

// Handler is called with the absolute path of a changed file.
type Handler func(path string)

// Watcher watches a set of files for writes.
//
// Add may be called before Run. Run must be called at most once; the
// handler runs on the goroutine that called Run.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	logger   *logging.Logger

	// pending maps a file to the time of its last event.
	pending map[string]time.Time
	closed  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
// Zero reports every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: DefaultDebounce,
		logger:   logging.NullLogger,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add starts watching the file at path. The file must exist.
func (w *Watcher) Add(path string) error {
	if w.closed {
		return ErrWatcherClosed
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("watch %s: %w", path, ErrNotRegularFile)
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Files returns the watched files in sorted order.
func (w *Watcher) Files() []string {
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Run delivers changes to fn until ctx is done. It returns nil when ctx
// is cancelled and closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	if w.closed {
		return ErrWatcherClosed
	}
	defer w.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.queue(filepath.Clean(ev.Name), time.Now())
			if w.debounce == 0 {
				w.emit(fn, w.flush(time.Now()))
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error: %v", err)

		case now := <-timer.C:
			w.emit(fn, w.flush(now))
			if len(w.pending) > 0 {
				timer.Reset(w.debounce)
			}
		}
	}
}

// Close stops watching. It is safe to call Close multiple times.
func (w *Watcher) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}

func (w *Watcher) queue(path string, at time.Time) {
	w.pending[path] = at
}

// flush removes and returns the pending files that have been quiet for the
// debounce interval as of now.
func (w *Watcher) flush(now time.Time) []string {
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// emit calls fn for each path. A panicking handler is logged and does not
// stop the watcher.
func (w *Watcher) emit(fn Handler, paths []string) {
	for _, path := range paths {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("watch handler panic on %s: %v", path, r)
				}
			}()
			w.logger.Debug("changed: %s", path)
			fn(path)
		}()
	}
}
