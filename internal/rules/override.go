package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

// OverrideFileName is the per-directory file listing extra skip globs.
const OverrideFileName = ".tmbliss"

// ParsePatterns extracts patterns from override file content.
// Blank lines and lines starting with '#' are dropped.
func ParsePatterns(content string) []string {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// ReadOverride reads the override file hosted in dir.
// A missing file yields no patterns and no error.
func ReadOverride(dir string) ([]string, error) {
	path := filepath.Join(dir, OverrideFileName)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open override file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, ParsePatterns(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read override file %s: %w", path, err)
	}

	return patterns, nil
}

// ScopePattern rewrites an override pattern into absolute skip globs bound to
// dir. A leading '/' anchors the pattern to dir itself; otherwise it matches
// at dir or at any depth below it.
func ScopePattern(dir, pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	pattern = strings.TrimSuffix(pattern, "/")
	if pattern == "" {
		return nil
	}

	base := strings.TrimSuffix(pathmatch.QuoteMeta(dir), "/")

	if strings.HasPrefix(pattern, "/") {
		anchored := strings.TrimLeft(pattern, "/")
		if anchored == "" {
			return nil
		}
		return []string{base + "/" + anchored}
	}

	return []string{
		base + "/" + pattern,
		base + "/**/" + pattern,
	}
}

// ScopePatterns applies ScopePattern to every pattern.
func ScopePatterns(dir string, patterns []string) []string {
	var globs []string
	for _, p := range patterns {
		globs = append(globs, ScopePattern(dir, p)...)
	}
	return globs
}

// OverrideCache reads each directory's override file at most once during a
// run. It is not safe for concurrent use.
type OverrideCache struct {
	patterns map[string][]string
}

// NewOverrideCache returns an empty cache.
func NewOverrideCache() *OverrideCache {
	return &OverrideCache{patterns: make(map[string][]string)}
}

// Apply returns the rule set for the subtree rooted at dir: r plus the scoped
// globs of dir's override file. When dir has no override file, r is returned
// unchanged. A read error is returned once; later calls for the same dir
// treat the file as empty.
func (c *OverrideCache) Apply(r RuleSet, dir string) (RuleSet, error) {
	patterns, ok := c.patterns[dir]
	if !ok {
		var err error
		patterns, err = ReadOverride(dir)
		c.patterns[dir] = patterns
		if err != nil {
			return r, err
		}
	}
	return r.WithSkipGlobs(ScopePatterns(dir, patterns)...), nil
}
