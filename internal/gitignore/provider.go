package gitignore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	gitignorefmt "github.com/go-git/go-git/v5/plumbing/format/gitignore"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

// File names read by the provider.
const (
	IgnoreFileName = ".gitignore"
	gitDirName     = ".git"
)

// DefaultCacheSize is the number of directories whose parsed patterns are kept.
const DefaultCacheSize = 1024

// Lister returns the ignored paths beneath a root.
type Lister interface {
	List(ctx context.Context, root string) []string
}

// Provider lists ignored paths using go-git pattern semantics.
// It is safe for concurrent use.
type Provider struct {
	globalExcludes bool
	cacheSize      int

	cache *lru.Cache[string, patternSet]

	globalOnce sync.Once
	global     []gitignorefmt.Pattern
}

var _ Lister = (*Provider)(nil)

// patternSet is a cache entry: the parsed patterns of one directory and the
// signature of the files they were read from.
type patternSet struct {
	signature string
	patterns  []gitignorefmt.Pattern
}

// Option configures a Provider.
type Option func(*Provider)

// WithGlobalExcludes enables the system and user-wide excludes files.
func WithGlobalExcludes(enabled bool) Option {
	return func(p *Provider) { p.globalExcludes = enabled }
}

// WithCacheSize sets the number of directories whose patterns are cached.
func WithCacheSize(size int) Option {
	return func(p *Provider) {
		if size > 0 {
			p.cacheSize = size
		}
	}
}

// New creates a Provider.
func New(opts ...Option) *Provider {
	p := &Provider{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(p)
	}
	// lru.New only fails for a non-positive size.
	p.cache, _ = lru.New[string, patternSet](p.cacheSize)
	return p
}

// List returns the canonical paths beneath root that root's ignore rules
// exclude. An ignored directory is reported as a whole and not descended
// into; .git directories are never visited. The result is sorted and
// root-reduced. Any failure yields an empty list.
func (p *Provider) List(ctx context.Context, root string) []string {
	patterns, err := p.patterns(root)
	if err != nil {
		slog.Debug("ignore rules unavailable",
			slog.String("path", root),
			slog.String("error", err.Error()))
		return nil
	}
	if len(patterns) == 0 {
		return nil
	}

	var ignored []string
	m := gitignorefmt.NewMatcher(patterns)
	if err := walk(ctx, root, nil, m, &ignored); err != nil {
		slog.Debug("ignore listing failed",
			slog.String("path", root),
			slog.String("error", err.Error()))
		return nil
	}

	return ReduceRoots(ignored)
}

// walk appends to out every entry beneath dir that m matches, descending only
// into unmatched real directories. rel is dir relative to the listing root.
func walk(ctx context.Context, dir string, rel []string, m gitignorefmt.Matcher, out *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == gitDirName {
			continue
		}

		path := filepath.Join(dir, name)
		parts := append(rel[:len(rel):len(rel)], name)
		isDir := entry.IsDir()

		if m.Match(parts, isDir) {
			canonical, err := pathmatch.Canonicalize(path)
			if err != nil {
				return err
			}
			*out = append(*out, canonical)
			continue
		}

		if isDir {
			if err := walk(ctx, path, parts, m, out); err != nil {
				return err
			}
		}
	}

	return nil
}

// patterns returns the full, precedence-ordered pattern list for dir.
func (p *Provider) patterns(dir string) ([]gitignorefmt.Pattern, error) {
	local, err := p.localPatterns(dir)
	if err != nil {
		return nil, err
	}

	global := p.globalPatterns()
	if len(global) == 0 {
		return local, nil
	}

	all := make([]gitignorefmt.Pattern, 0, len(global)+len(local))
	all = append(all, global...)
	all = append(all, local...)
	return all, nil
}

// localPatterns reads dir's own ignore files, reusing the cached parse when
// none of them changed.
func (p *Provider) localPatterns(dir string) ([]gitignorefmt.Pattern, error) {
	sources := []string{filepath.Join(dir, IgnoreFileName)}
	if info, err := os.Stat(filepath.Join(dir, gitDirName)); err == nil && info.IsDir() {
		exclude := filepath.Join(dir, gitDirName, "info", "exclude")
		sources = []string{exclude, sources[0]}
	}

	sig := signature(sources)
	if cached, ok := p.cache.Get(dir); ok && cached.signature == sig {
		return cached.patterns, nil
	}

	var patterns []gitignorefmt.Pattern
	for _, src := range sources {
		ps, err := readPatternFile(src)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, ps...)
	}

	p.cache.Add(dir, patternSet{signature: sig, patterns: patterns})
	return patterns, nil
}

// globalPatterns loads the system and global excludes once per Provider.
func (p *Provider) globalPatterns() []gitignorefmt.Pattern {
	if !p.globalExcludes {
		return nil
	}

	p.globalOnce.Do(func() {
		fsys := osfs.New("/")
		system, err := gitignorefmt.LoadSystemPatterns(fsys)
		if err != nil {
			slog.Debug("system git excludes unavailable", slog.String("error", err.Error()))
		}
		global, err := gitignorefmt.LoadGlobalPatterns(fsys)
		if err != nil {
			slog.Debug("global git excludes unavailable", slog.String("error", err.Error()))
		}
		p.global = append(system, global...)
	})
	return p.global
}

// readPatternFile parses one ignore file. A missing file has no patterns.
func readPatternFile(path string) ([]gitignorefmt.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var patterns []gitignorefmt.Pattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if !strings.HasPrefix(line, "#") && len(strings.TrimSpace(line)) > 0 {
			patterns = append(patterns, gitignorefmt.ParsePattern(line, nil))
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return patterns, nil
}

// signature identifies the current content of the source files by size and
// modification time.
func signature(sources []string) string {
	var b strings.Builder
	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			b.WriteString("-;")
			continue
		}
		fmt.Fprintf(&b, "%d:%d;", info.ModTime().UnixNano(), info.Size())
	}
	return b.String()
}
