package marker

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

func TestResolveBackend(t *testing.T) {
	assert.Equal(t, BackendSQLite, ResolveBackend(BackendSQLite))
	assert.Equal(t, BackendMemory, ResolveBackend(BackendMemory))

	want := BackendSQLite
	switch runtime.GOOS {
	case "darwin":
		want = BackendTMUtil
	case "linux":
		want = BackendXattr
	}
	assert.Equal(t, want, ResolveBackend(BackendAuto))
	assert.Equal(t, want, ResolveBackend(""))
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, Close(s))
}

func TestOpen_SQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "x.db")
	s, err := Open(Options{Backend: BackendSQLite, Path: db})
	require.NoError(t, err)
	_, ok := s.(Lister)
	assert.True(t, ok)
	assert.NoError(t, Close(s))
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(Options{Backend: "floppy"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}
