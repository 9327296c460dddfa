package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/tmbliss/internal/gitignore"
	"github.com/Aman-CERP/tmbliss/internal/rules"
)

// Trigger is the kind of change that makes a re-run worthwhile.
type Trigger int

const (
	// TriggerRules means an ignore file was created, written, renamed or removed.
	TriggerRules Trigger = iota
	// TriggerNewDir means a directory appeared under a watched root.
	TriggerNewDir
)

// String returns a human-readable representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerRules:
		return "RULES_CHANGE"
	case TriggerNewDir:
		return "NEW_DIR"
	default:
		return "UNKNOWN"
	}
}

// Event is one relevant filesystem change.
type Event struct {
	// Path is the absolute path that changed.
	Path string
	// Trigger is the kind of change.
	Trigger Trigger
	// Timestamp is when the change was seen.
	Timestamp time.Time
}

// SkipFunc reports whether a directory should not be watched.
// The directory and everything below it are left out.
type SkipFunc func(dir string) bool

// Options configures the watcher.
type Options struct {
	// DebounceWindow is the quiet time before a batch is emitted. Default: 2s
	DebounceWindow time.Duration
	// EventBufferSize is the capacity of the batch channel. Default: 16
	EventBufferSize int
	// SkipDir prunes directories from the watch set. .git is always skipped.
	SkipDir SkipFunc
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  2 * time.Second,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}

// Watcher reports rule changes and new directories under a set of roots.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options

	events chan []Event
	errors chan error
	stopCh chan struct{}
	ready  chan struct{}

	mu      sync.RWMutex
	stopped bool
	watched int
}

// New creates a watcher. Nothing is watched until Start.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		opts:      opts,
		events:    make(chan []Event, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		ready:     make(chan struct{}),
	}, nil
}

// Start watches roots recursively and blocks until ctx is done or Stop is
// called. Directories that cannot be watched are reported on Errors and
// skipped; a root that does not exist is an error.
func (w *Watcher) Start(ctx context.Context, roots []string) error {
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve absolute path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("watch %s: %w", abs, err)
		}
		w.addRecursive(abs)
	}

	slog.Debug("watcher started",
		slog.Int("roots", len(roots)),
		slog.Int("directories", w.Watched()))
	close(w.ready)

	go w.forward(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if name == gitignore.IgnoreFileName || name == rules.OverrideFileName {
		if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
			w.debouncer.Add(Event{Path: event.Name, Trigger: TriggerRules, Timestamp: time.Now()})
		}
		return
	}

	if event.Op&fsnotify.Create == 0 {
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if w.skip(event.Name) {
		return
	}

	w.addRecursive(event.Name)
	w.debouncer.Add(Event{Path: event.Name, Trigger: TriggerNewDir, Timestamp: time.Now()})
}

func (w *Watcher) skip(dir string) bool {
	if filepath.Base(dir) == ".git" {
		return true
	}
	return w.opts.SkipDir != nil && w.opts.SkipDir(dir)
}

// addRecursive watches dir and every real directory below it. Symlinked
// directories are not followed.
func (w *Watcher) addRecursive(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skip(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.emitError(fmt.Errorf("watch %s: %w", path, err))
			return filepath.SkipDir
		}

		w.mu.Lock()
		w.watched++
		w.mu.Unlock()
		return nil
	})
}

func (w *Watcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			w.emit(batch)
		}
	}
}

func (w *Watcher) emit(batch []Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}

	select {
	case w.events <- batch:
	default:
		slog.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(batch)))
	}
}

func (w *Watcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
		slog.Warn("watcher error dropped", slog.String("error", err.Error()))
	}
}

// Stop stops watching and closes the Events and Errors channels.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	err := w.fs.Close()

	close(w.events)
	close(w.errors)
	return err
}

// Events returns the channel of debounced batches.
func (w *Watcher) Events() <-chan []Event {
	return w.events
}

// Errors returns the channel of non-fatal watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Ready is closed once the initial watch set is in place.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Watched returns the number of directories added to the watch set.
func (w *Watcher) Watched() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watched
}
