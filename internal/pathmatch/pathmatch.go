// Package pathmatch provides the glob and path-prefix predicates used to
// evaluate skip and allowlist rules against absolute paths.
package pathmatch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// globCacheSize bounds the number of compiled patterns kept in memory.
const globCacheSize = 4096

// compiled is a cache entry; g is nil when the pattern failed to compile.
type compiled struct {
	g glob.Glob
}

var (
	globCache *lru.Cache[string, compiled]
	cacheOnce sync.Once
)

func cache() *lru.Cache[string, compiled] {
	cacheOnce.Do(func() {
		// lru.New only fails for a non-positive size.
		globCache, _ = lru.New[string, compiled](globCacheSize)
	})
	return globCache
}

// compile returns the compiled glob for pattern, using '/' as the only
// separator so that "*" stops at path boundaries and "**" crosses them.
func compile(pattern string) glob.Glob {
	c := cache()
	if entry, ok := c.Get(pattern); ok {
		return entry.g
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		slog.Warn("invalid glob pattern ignored",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()))
		g = nil
	}
	c.Add(pattern, compiled{g: g})
	return g
}

// Glob reports whether the whole of path matches pattern.
// An invalid pattern matches nothing.
func Glob(pattern, path string) bool {
	g := compile(pattern)
	if g == nil {
		return false
	}
	return g.Match(filepath.ToSlash(path))
}

// AnyGlob reports whether path matches at least one of patterns.
func AnyGlob(patterns []string, path string) bool {
	for _, p := range patterns {
		if Glob(p, path) {
			return true
		}
	}
	return false
}

// QuoteMeta escapes glob metacharacters so a literal directory can prefix a
// user pattern.
func QuoteMeta(s string) string {
	return glob.QuoteMeta(filepath.ToSlash(s))
}

// Canonicalize returns the absolute path with symlinks resolved.
// The path must exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", canonicalizeError(path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", canonicalizeError(path, err)
	}
	return resolved, nil
}

func canonicalizeError(path string, err error) error {
	return errors.New(errors.ErrCodeCanonicalizeFailed,
		fmt.Sprintf("Can't canonicalize path %s: %v", path, err), err).WithPath(path)
}

// canonicalOrClean canonicalizes path, falling back to its cleaned absolute
// form when the path cannot be resolved (for example it does not exist yet).
func canonicalOrClean(path string) string {
	if c, err := Canonicalize(path); err == nil {
		return c
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// IsInside reports whether child is root or lies beneath it.
// Comparison is by whole path components, so "/foo" does not contain "/foobar".
func IsInside(root, child string) bool {
	r := canonicalOrClean(root)
	c := canonicalOrClean(child)

	return r == c || (hasPathPrefix(c, r) && !hasPathPrefix(r, c))
}

// AnyInside reports whether child is inside at least one of roots.
func AnyInside(roots []string, child string) bool {
	for _, root := range roots {
		if IsInside(root, child) {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether p starts with prefix as whole components.
func hasPathPrefix(p, prefix string) bool {
	if p == prefix {
		return true
	}
	sep := string(os.PathSeparator)
	if strings.HasSuffix(prefix, sep) {
		return strings.HasPrefix(p, prefix)
	}
	return strings.HasPrefix(p, prefix+sep)
}
