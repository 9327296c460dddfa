//go:build !linux && !darwin

package marker

import (
	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// DefaultAttribute is unused on platforms without extended attributes.
const DefaultAttribute = ""

// XattrStore is unavailable on this platform.
type XattrStore struct{}

// NewXattrStore always fails on this platform.
func NewXattrStore(string) (*XattrStore, error) {
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"extended attribute store is not supported on this platform", nil)
}

// IsExcluded implements Store.
func (s *XattrStore) IsExcluded(string) (bool, error) { return false, errUnsupported }

// AddExclusion implements Store.
func (s *XattrStore) AddExclusion(string) error { return errUnsupported }

// RemoveExclusion implements Store.
func (s *XattrStore) RemoveExclusion(string) error { return errUnsupported }

var errUnsupported = errors.New(errors.ErrCodeMarkerUnknown, "Unknown error: not supported", nil)
