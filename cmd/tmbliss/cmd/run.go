package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/engine"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/rules"
)

type markOptions struct {
	paths  []string
	dryRun bool
	rules  ruleFlags
	store  storeFlags
}

func newRunCmd() *cobra.Command {
	opts := &markOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mark ignored files in the given directories as excluded from backup",
		Long: `Walk each --path directory and mark every path version control ignores
as excluded from backup, honoring allowlist and skip rules.`,
		Example: `  tmbliss run --path ~/src
  tmbliss run --path ~/src --path ~/work --allowlist-glob '**/.env' --skip-path ~/src/vendor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMark(cmd, opts, opts.dryRun)
		},
	}

	cmd.Flags().StringArrayVar(&opts.paths, "path", nil, "Directory to process [--path ... --path ...]")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Only show the paths that would be excluded")
	opts.rules.bindAllowlist(cmd, "the backup exclusion")
	opts.rules.bindSkip(cmd)
	opts.store.bind(cmd, marker.BackendAuto)
	opts.store.bindGit(cmd)
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newListCmd() *cobra.Command {
	opts := &markOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the paths that would be excluded from backup (alias for 'run --dry-run')",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMark(cmd, opts, true)
		},
	}

	cmd.Flags().StringArrayVar(&opts.paths, "path", nil, "Directory to process [--path ... --path ...]")
	opts.rules.bindAllowlist(cmd, "the backup exclusion")
	opts.rules.bindSkip(cmd)
	opts.store.bind(cmd, marker.BackendAuto)
	opts.store.bindGit(cmd)
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runMark(cmd *cobra.Command, opts *markOptions, dryRun bool) error {
	store, closeStore, err := openStore(opts.store.options())
	if err != nil {
		return err
	}
	defer closeStore()

	eng := newEngine(store, opts.store.globalExcludes, newReporter(cmd))
	return mark(cmd.Context(), eng, opts.rules.ruleSet(dryRun), opts.paths)
}

func mark(ctx context.Context, eng *engine.Engine, rs rules.RuleSet, roots []string) error {
	slog.Debug("mark started",
		slog.Any("roots", roots),
		slog.Bool("dry_run", rs.DryRun),
		slog.Bool("skip_errors", rs.SkipErrors))

	if err := eng.Mark(ctx, rs, roots); err != nil {
		return err
	}

	slog.Debug("mark finished", slog.Int("roots", len(roots)))
	return nil
}
