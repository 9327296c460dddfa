package engine

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/Aman-CERP/tmbliss/internal/output"
	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
	"github.com/Aman-CERP/tmbliss/internal/rules"
	"github.com/Aman-CERP/tmbliss/internal/scanner"
)

// Reset clears the mark from every entry beneath root that rs's allowlist
// does not protect. Unlike Mark it never prunes: a marked directory is still
// descended into so marked descendants are found too. Only rs.DryRun and the
// allowlist fields of rs are used.
func (e *Engine) Reset(ctx context.Context, rs rules.RuleSet, root string) error {
	canonical, err := pathmatch.Canonicalize(root)
	if err != nil {
		return err
	}

	return scanner.Walk(ctx, canonical, func(path string, _ fs.DirEntry) (bool, error) {
		if rs.MatchesAllowlist(path) {
			return true, nil
		}

		marked, err := e.store.IsExcluded(path)
		if err != nil {
			return false, err
		}
		if !marked {
			return true, nil
		}

		e.report(output.LabelExcluded, path)
		if rs.DryRun {
			return true, nil
		}
		if err := e.store.RemoveExclusion(path); err != nil {
			return false, fmt.Errorf("failed to clear mark: %w", err)
		}
		return true, nil
	})
}
