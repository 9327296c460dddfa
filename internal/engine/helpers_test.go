package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/tmbliss/internal/gitignore"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

type event struct {
	label   string
	message string
}

// recorder is a Reporter keeping every event.
type recorder struct {
	events []event
}

func (r *recorder) Event(label, message string) {
	r.events = append(r.events, event{label: label, message: message})
}

func (r *recorder) labels(label string) []string {
	var out []string
	for _, e := range r.events {
		if e.label == label {
			out = append(out, e.message)
		}
	}
	sort.Strings(out)
	return out
}

// buildTree creates the given entries under a fresh canonical temp dir and
// returns it. Names ending in "/" are directories; other names are files with
// the mapped content.
func buildTree(t *testing.T, entries map[string]string) string {
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

type fixture struct {
	root   string
	store  *marker.MemoryStore
	events *recorder
	engine *Engine
}

func newFixture(t *testing.T, entries map[string]string) *fixture {
	t.Helper()
	f := &fixture{
		root:   buildTree(t, entries),
		store:  marker.NewMemoryStore(),
		events: &recorder{},
	}
	f.engine = New(f.store, gitignore.New(), f.events)
	return f
}

func (f *fixture) path(rel string) string {
	return filepath.Join(f.root, filepath.FromSlash(rel))
}

func (f *fixture) paths(rels ...string) []string {
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		out = append(out, f.path(r))
	}
	sort.Strings(out)
	return out
}

func (f *fixture) marked(t *testing.T) []string {
	t.Helper()
	list, err := f.store.List()
	require.NoError(t, err)
	if len(list) == 0 {
		return nil
	}
	return list
}
