package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultMaxSizeMB = 10
	defaultMaxFiles  = 5
)

// RotatingWriter is an io.Writer over a log file that is rotated once it
// grows past a size limit. Rotated files are named path.1 (newest) through
// path.N (oldest).
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu      sync.Mutex
	file    *os.File
	written int64
	sync    bool
}

// NewRotatingWriter opens (or creates) path for appending. Non-positive
// limits fall back to 10 MB and 5 files. Every write is synced so that
// `tmbliss logs --follow` sees records as they happen.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
		sync:     true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetSync toggles the fsync after each write.
func (w *RotatingWriter) SetSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sync = enabled
}

// Write appends p, rotating first when p would push the file past the limit.
// A failed rotation is reported on stderr and the write goes to the current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.written > 0 && w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	if err == nil && w.sync {
		_ = w.file.Sync()
	}
	return n, err
}

// Close closes the underlying file. Later writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

func (w *RotatingWriter) backup(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// rotate shifts tmbliss.log -> .1 -> .2 ... and drops whatever falls past maxFiles.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	_ = os.Remove(w.backup(w.maxFiles))
	for n := w.maxFiles - 1; n >= 1; n-- {
		if _, err := os.Stat(w.backup(n)); err == nil {
			_ = os.Rename(w.backup(n), w.backup(n+1))
		}
	}

	if err := os.Rename(w.path, w.backup(1)); err != nil && !os.IsNotExist(err) {
		reopenErr := w.open()
		if reopenErr != nil {
			return fmt.Errorf("failed to rotate log file: %w (reopen: %v)", err, reopenErr)
		}
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return w.open()
}
