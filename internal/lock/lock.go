// Package lock provides the cross-process lock that keeps two service runs
// from marking the same trees at once.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// FileLock is an exclusive advisory lock on a file, backed by gofrs/flock.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a lock on path. Nothing is touched until TryLock or Lock.
func New(path string) *FileLock {
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Lock blocks until the lock is acquired.
func (l *FileLock) Lock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns false when another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Acquire is TryLock with the busy case reported as ERR_502_SERVICE_LOCKED.
func (l *FileLock) Acquire() error {
	ok, err := l.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeServiceLocked,
			fmt.Sprintf("Another tmbliss service holds %s", l.path), nil).
			WithPath(l.path)
	}
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}

	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked reports whether this FileLock currently holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.locked
}

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
