package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

// syncBuffer is a bytes.Buffer safe for a command writing from another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	_ = stopProfilingAndLogging(nil, nil)
	return out.String(), err
}

// project builds a canonical temp tree. Names ending in "/" are directories.
func project(t *testing.T, entries map[string]string) string {
	t.Helper()

	root, err := pathmatch.Canonicalize(t.TempDir())
	require.NoError(t, err)

	for name, content := range entries {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// nodeProject is a small repository whose node_modules and dist are ignored.
func nodeProject(t *testing.T) string {
	return project(t, map[string]string{
		".gitignore":       "node_modules/\ndist/\n.env\n",
		"src/index.js":     "",
		"node_modules/a/x": "",
		"dist/app.js":      "",
		".env":             "SECRET=1",
	})
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
