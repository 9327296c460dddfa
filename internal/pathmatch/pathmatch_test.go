package pathmatch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

func TestGlob(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{name: "double star crosses separators", pattern: "**/devfile.txt", path: "/tmp/ws/sub/devfile.txt", want: true},
		{name: "double star at root level", pattern: "**/.env", path: "/ws/.env", want: true},
		{name: "single star stays in segment", pattern: "/ws/*.txt", path: "/ws/a.txt", want: true},
		{name: "single star does not cross", pattern: "/ws/*.txt", path: "/ws/sub/a.txt", want: false},
		{name: "bare star never matches absolute", pattern: "*.txt", path: "/ws/a.txt", want: false},
		{name: "trailing double star", pattern: "/ws/**", path: "/ws/a/b/c", want: true},
		{name: "question mark", pattern: "/ws/file?.txt", path: "/ws/file1.txt", want: true},
		{name: "question mark not separator", pattern: "/ws/a?b", path: "/ws/a/b", want: false},
		{name: "alternatives", pattern: "**/{a,b}.txt", path: "/ws/b.txt", want: true},
		{name: "character class", pattern: "/ws/[ab].txt", path: "/ws/b.txt", want: true},
		{name: "full match required", pattern: "/ws/a", path: "/ws/ab", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Glob(tt.pattern, tt.path))
		})
	}
}

func TestGlob_CachesCompiledPatterns(t *testing.T) {
	pattern := "/cached/**/x"
	assert.True(t, Glob(pattern, "/cached/a/x"))

	_, ok := cache().Get(pattern)
	assert.True(t, ok)
	assert.True(t, Glob(pattern, "/cached/a/b/x"))
}

func TestAnyGlob(t *testing.T) {
	patterns := []string{"**/node_modules", "**/.venv"}

	assert.True(t, AnyGlob(patterns, "/p/web/node_modules"))
	assert.False(t, AnyGlob(patterns, "/p/web/src"))
	assert.False(t, AnyGlob(nil, "/p"))
}

func TestQuoteMeta_EscapesDirectory(t *testing.T) {
	dir := "/tmp/we[ir]d{dir}"
	pattern := QuoteMeta(dir) + "/*.log"

	assert.True(t, Glob(pattern, dir+"/a.log"))
	assert.False(t, Glob(pattern, "/tmp/wei/a.log"))
}

func TestIsInside(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		child string
		want  bool
	}{
		{name: "lexical prefix is not containment", root: "/foo", child: "/foobar", want: false},
		{name: "direct child", root: "/foo", child: "/foo/bar", want: true},
		{name: "deep child", root: "/foo", child: "/foo/bar/baz", want: true},
		{name: "equal", root: "/foo", child: "/foo", want: true},
		{name: "parent is not inside child", root: "/foo/bar", child: "/foo", want: false},
		{name: "trailing separator on root", root: "/foo/", child: "/foo/bar", want: true},
		{name: "filesystem root", root: "/", child: "/foo", want: true},
		{name: "sibling", root: "/foo/a", child: "/foo/b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInside(tt.root, tt.child))
		})
	}
}

func TestIsInside_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(real, "inner"), 0o755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(real, link))

	assert.True(t, IsInside(link, filepath.Join(real, "inner")))
	assert.True(t, IsInside(real, filepath.Join(link, "inner")))
}

func TestAnyInside(t *testing.T) {
	assert.True(t, AnyInside([]string{"/a", "/b"}, "/b/c"))
	assert.False(t, AnyInside([]string{"/a", "/b"}, "/bc"))
}

func TestCanonicalize(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	got, err := Canonicalize(filepath.Join(dir, ".", "f.txt"))
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(file)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCanonicalize_MissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := Canonicalize(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, errors.ErrCodeCanonicalizeFailed, errors.GetCode(err))
	assert.True(t, strings.HasPrefix(err.Error(), "Can't canonicalize path "+missing+": "))
}
