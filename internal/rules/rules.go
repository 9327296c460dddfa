// Package rules holds the caller-supplied rule set and the per-directory
// override files that extend it for a subtree.
package rules

import (
	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

// RuleSet is the immutable rule configuration for one run.
// Methods that add rules return a new RuleSet; the receiver's slices are never
// written to, so a subtree's additions cannot leak to siblings or ancestors.
type RuleSet struct {
	// SkipGlobs are globs that prevent marking and prune recursion.
	SkipGlobs []string
	// SkipPaths are path prefixes that prevent marking and prune recursion.
	SkipPaths []string
	// AllowlistGlobs are globs that prevent marking only.
	AllowlistGlobs []string
	// AllowlistPaths are path prefixes that prevent marking only.
	AllowlistPaths []string
	// ExcludePaths are processed once before any directory is scanned.
	ExcludePaths []string

	// DryRun reports decisions without touching markers.
	DryRun bool
	// SkipErrors downgrades per-path marker failures to events.
	SkipErrors bool
}

// WithSkipGlobs returns a copy of r with globs appended to SkipGlobs.
func (r RuleSet) WithSkipGlobs(globs ...string) RuleSet {
	if len(globs) == 0 {
		return r
	}
	merged := make([]string, 0, len(r.SkipGlobs)+len(globs))
	merged = append(merged, r.SkipGlobs...)
	merged = append(merged, globs...)
	r.SkipGlobs = merged
	return r
}

// MatchesSkipGlob reports whether path matches any skip glob.
func (r RuleSet) MatchesSkipGlob(path string) bool {
	return pathmatch.AnyGlob(r.SkipGlobs, path)
}

// MatchesSkipPath reports whether path lies inside any skip path.
func (r RuleSet) MatchesSkipPath(path string) bool {
	return pathmatch.AnyInside(r.SkipPaths, path)
}

// MatchesAllowlist reports whether path is protected by an allowlist path or
// glob. Paths are checked before globs.
func (r RuleSet) MatchesAllowlist(path string) bool {
	return pathmatch.AnyInside(r.AllowlistPaths, path) ||
		pathmatch.AnyGlob(r.AllowlistGlobs, path)
}
