package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyWork() int {
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i % 7
	}
	return sum
}

func requireNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOptions_Enabled(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"none", Options{}, false},
		{"cpu", Options{CPU: "cpu.prof"}, true},
		{"heap", Options{Heap: "heap.prof"}, true},
		{"trace", Options{Trace: "trace.out"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Enabled())
		})
	}
}

func TestSession_AllProfiles(t *testing.T) {
	// Given: all three profile outputs requested
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Heap:  filepath.Join(dir, "heap.prof"),
		Trace: filepath.Join(dir, "trace.out"),
	}

	// When: a session runs some work and stops
	s, err := Start(opts)
	require.NoError(t, err)
	_ = busyWork()
	require.NoError(t, s.Stop())

	// Then: every file has content
	requireNonEmpty(t, opts.CPU)
	requireNonEmpty(t, opts.Heap)
	requireNonEmpty(t, opts.Trace)
}

func TestSession_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s, err := Start(Options{Heap: filepath.Join(dir, "heap.prof")})
	require.NoError(t, err)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	var nilSession *Session
	assert.NoError(t, nilSession.Stop())
}

func TestStart_InvalidPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing", "cpu.prof")

	_, err := Start(Options{CPU: missing})
	assert.Error(t, err)
}

func TestStart_TraceFailureStopsCPU(t *testing.T) {
	// Given: a valid CPU path but an unwritable trace path
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Trace: filepath.Join(dir, "missing", "trace.out"),
	}

	// When: the session fails to start
	_, err := Start(opts)
	require.Error(t, err)

	// Then: CPU profiling was released and can start again
	s, err := Start(Options{CPU: filepath.Join(dir, "again.prof")})
	require.NoError(t, err)
	require.NoError(t, s.Stop())
}

func TestSession_HeapWriteFailure(t *testing.T) {
	s, err := Start(Options{Heap: filepath.Join(t.TempDir(), "missing", "heap.prof")})
	require.NoError(t, err)

	assert.Error(t, s.Stop())
}
