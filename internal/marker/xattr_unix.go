//go:build linux || darwin

package marker

import (
	stderrors "errors"

	"golang.org/x/sys/unix"
)

// XattrStore keeps the mark in an extended attribute of the path itself.
// Symlinks are marked, not their targets.
type XattrStore struct {
	attribute string
	value     []byte
}

var _ Store = (*XattrStore)(nil)

// NewXattrStore creates a store using attribute, or the platform default when
// attribute is empty.
func NewXattrStore(attribute string) (*XattrStore, error) {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	return &XattrStore{attribute: attribute, value: defaultValue}, nil
}

// Attribute returns the extended attribute name in use.
func (s *XattrStore) Attribute() string {
	return s.attribute
}

// IsExcluded implements Store.
func (s *XattrStore) IsExcluded(path string) (bool, error) {
	_, err := unix.Lgetxattr(path, s.attribute, nil)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, errNoAttr) {
		return false, nil
	}
	return false, FromOSError(path, err)
}

// AddExclusion implements Store.
func (s *XattrStore) AddExclusion(path string) error {
	if err := unix.Lsetxattr(path, s.attribute, s.value, 0); err != nil {
		return FromOSError(path, err)
	}
	return nil
}

// RemoveExclusion implements Store.
func (s *XattrStore) RemoveExclusion(path string) error {
	err := unix.Lremovexattr(path, s.attribute)
	if err == nil || stderrors.Is(err, errNoAttr) {
		return nil
	}
	return FromOSError(path, err)
}
