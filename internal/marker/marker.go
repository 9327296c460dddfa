// Package marker persists the boolean "exclude from backup" mark on paths.
//
// Every store reports failures as *errors.Error values carrying one of three
// codes, so callers can tell a vanished path from a permission problem from
// anything else the operating system reports. KindOf collapses an error into
// that three-way classification.
package marker

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// Store reads and writes the exclusion mark of a path.
type Store interface {
	// IsExcluded reports whether path currently carries the mark.
	IsExcluded(path string) (bool, error)
	// AddExclusion sets the mark on path.
	AddExclusion(path string) error
	// RemoveExclusion clears the mark on path. Clearing an unmarked path
	// succeeds.
	RemoveExclusion(path string) error
}

// Lister is implemented by stores that can enumerate their marked paths.
type Lister interface {
	List() ([]string, error)
}

// Kind classifies a store failure.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindNotFound means the path does not exist.
	KindNotFound
	// KindInaccessible means permissions prevented the operation.
	KindInaccessible
	// KindUnknown covers every other failure.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindInaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case stderrors.Is(err, errors.ErrPathNotFound):
		return KindNotFound
	case stderrors.Is(err, errors.ErrPathInaccessible):
		return KindInaccessible
	default:
		return KindUnknown
	}
}

// FromOSError maps an operating system error on path into a store error.
func FromOSError(path string, err error) error {
	if err == nil {
		return nil
	}

	var already *errors.Error
	if stderrors.As(err, &already) {
		return err
	}

	switch {
	case stderrors.Is(err, fs.ErrNotExist), stderrors.Is(err, syscall.ENOTDIR):
		return errors.PathNotFound(path, err)
	case stderrors.Is(err, fs.ErrPermission):
		return errors.PathInaccessible(path, err)
	default:
		return errors.MarkerUnknown(path, osStatus(err), err)
	}
}

// osStatus returns the bare OS description of err, without the operation and
// path prefix added by *fs.PathError.
func osStatus(err error) string {
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return errno.Error()
	}
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// checkExists returns a store error when path cannot be stat'ed.
// Symlinks are not followed.
func checkExists(path string) error {
	_, err := os.Lstat(path)
	return FromOSError(path, err)
}

// Close releases the resources held by s, if any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
