package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/tmbliss/internal/errors"
	"github.com/Aman-CERP/tmbliss/internal/gitignore"
	"github.com/Aman-CERP/tmbliss/internal/output"
	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
	"github.com/Aman-CERP/tmbliss/internal/rules"
	"github.com/Aman-CERP/tmbliss/internal/scanner"
)

// runState is the mutable state of one Mark call.
type runState struct {
	processed map[string]struct{}
	overrides *rules.OverrideCache
}

func newRunState() *runState {
	return &runState{
		processed: make(map[string]struct{}),
		overrides: rules.NewOverrideCache(),
	}
}

// withOverride returns rs extended by dir's override file. An unreadable
// file is logged and leaves rs unchanged.
func (s *runState) withOverride(rs rules.RuleSet, dir string) rules.RuleSet {
	effective, err := s.overrides.Apply(rs, dir)
	if err != nil {
		slog.Warn("override file ignored",
			slog.String("path", dir),
			slog.String("error", err.Error()))
	}
	return effective
}

func (s *runState) seen(path string) bool {
	_, ok := s.processed[path]
	return ok
}

func (s *runState) add(path string) {
	s.processed[path] = struct{}{}
}

// excluder reports whether a path is pruned: neither marked nor descended.
type excluder func(path string) bool

// excluder builds the pruning predicate for one directory's effective rules.
// Matched paths are recorded as processed.
func (s *runState) excluder(rs rules.RuleSet) excluder {
	return func(path string) bool {
		if s.seen(path) {
			return true
		}

		switch filepath.Base(path) {
		case ".git", rules.OverrideFileName, gitignore.IgnoreFileName:
			s.add(path)
			return true
		}

		if rs.MatchesSkipGlob(path) || rs.MatchesSkipPath(path) {
			s.add(path)
			return true
		}
		return false
	}
}

// keepCandidate is the filter applied to ignore-provider candidates. Unlike
// the excluder, it consults the allowlist first.
func keepCandidate(rs rules.RuleSet, path string) bool {
	if rs.MatchesAllowlist(path) {
		return false
	}
	return !rs.MatchesSkipPath(path) && !rs.MatchesSkipGlob(path)
}

// Mark processes rs.ExcludePaths, then every root directory in order.
// The first fatal failure stops the run.
func (e *Engine) Mark(ctx context.Context, rs rules.RuleSet, roots []string) error {
	st := newRunState()

	for _, path := range rs.ExcludePaths {
		if err := e.processPath(st, rs, path); err != nil {
			return err
		}
	}

	for _, root := range roots {
		if err := e.processDirectory(ctx, st, rs, root); err != nil {
			return errors.Annotate(err, "Can't process directory %s", root)
		}
	}
	return nil
}

func (e *Engine) processDirectory(ctx context.Context, st *runState, rs rules.RuleSet, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	canonical, err := pathmatch.Canonicalize(dir)
	if err != nil {
		return err
	}

	effective := st.withOverride(rs, canonical)
	exclude := st.excluder(effective)
	if exclude(canonical) {
		return nil
	}

	marked, err := e.store.IsExcluded(canonical)
	if err != nil {
		if effective.SkipErrors {
			e.reportFailure(output.LabelErrorChecking, canonical, err)
			return nil
		}
		return errors.Annotate(err, "Can't process path %s", canonical)
	}
	if marked {
		return e.processPath(st, effective, canonical)
	}

	for _, candidate := range e.ignores.List(ctx, canonical) {
		if !keepCandidate(effective, candidate) || st.prunedBetween(effective, canonical, candidate) {
			continue
		}
		if err := e.processPath(st, effective, candidate); err != nil {
			return err
		}
	}

	children, err := scanner.ListDirs(canonical, scanner.ExcludeFunc(exclude))
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := e.processDirectory(ctx, st, effective, child); err != nil {
			return err
		}
	}
	return nil
}

// prunedBetween reports whether path, or any directory between dir and path,
// is pruned. rs is the rule set in effect at dir; every directory walked
// through adds its own override file for the entries beneath it, so a
// candidate is judged by the rules it would meet if the walk reached it.
func (s *runState) prunedBetween(rs rules.RuleSet, dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return s.excluder(rs)(path)
	}

	parts := strings.Split(rel, string(filepath.Separator))
	current := dir
	for i, part := range parts {
		current = filepath.Join(current, part)
		if s.excluder(rs)(current) {
			return true
		}
		if i < len(parts)-1 {
			rs = s.withOverride(rs, current)
		}
	}
	return false
}

// processPath checks one path and marks it when it is not marked yet.
// Each canonical path is handled at most once per run.
func (e *Engine) processPath(st *runState, rs rules.RuleSet, path string) error {
	canonical, err := pathmatch.Canonicalize(path)
	if err != nil {
		if rs.SkipErrors {
			e.reportFailure(output.LabelErrorChecking, path, err)
			return nil
		}
		return err
	}

	if st.seen(canonical) {
		return nil
	}
	st.add(canonical)

	marked, err := e.store.IsExcluded(canonical)
	if err != nil {
		if rs.SkipErrors {
			e.reportFailure(output.LabelErrorChecking, canonical, err)
			return nil
		}
		return errors.Annotate(err, "Can't process path %s", canonical)
	}
	if marked {
		e.report(output.LabelExcluded, canonical)
		return nil
	}
	e.report(output.LabelNew, canonical)

	if rs.DryRun {
		return nil
	}

	if err := e.store.AddExclusion(canonical); err != nil {
		if rs.SkipErrors {
			e.reportFailure(output.LabelErrorExcluding, canonical, err)
			return nil
		}
		return errors.Annotate(err, "Can't process path %s", canonical)
	}
	return nil
}
