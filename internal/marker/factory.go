package marker

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendAuto   = "auto"
	BackendXattr  = "xattr"
	BackendTMUtil = "tmutil"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists every accepted backend name.
var Backends = []string{BackendAuto, BackendXattr, BackendTMUtil, BackendSQLite, BackendMemory}

// Options selects and configures a store.
type Options struct {
	// Backend is one of Backends; empty means BackendAuto.
	Backend string
	// Path is the database file of the sqlite backend.
	Path string
	// Attribute overrides the extended attribute name of the xattr and tmutil
	// backends.
	Attribute string
}

// DefaultSQLitePath returns ~/.tmbliss/exclusions.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".tmbliss", "exclusions.db")
}

// ResolveBackend maps BackendAuto to the platform default.
func ResolveBackend(backend string) string {
	if backend != "" && backend != BackendAuto {
		return backend
	}
	switch runtime.GOOS {
	case "darwin":
		return BackendTMUtil
	case "linux":
		return BackendXattr
	default:
		return BackendSQLite
	}
}

// Open creates the store described by opts. Callers release it with Close.
func Open(opts Options) (Store, error) {
	switch backend := ResolveBackend(opts.Backend); backend {
	case BackendXattr:
		s, err := NewXattrStore(opts.Attribute)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendTMUtil:
		check, err := NewXattrStore(opts.Attribute)
		if err != nil {
			return nil, err
		}
		return NewTMUtilStore(check), nil
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			path = DefaultSQLitePath()
		}
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err).WithPath(path)
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.ValidationError(
			fmt.Sprintf("unknown store backend %q", backend), nil).
			WithSuggestion(fmt.Sprintf("Use one of: %v", Backends))
	}
}
