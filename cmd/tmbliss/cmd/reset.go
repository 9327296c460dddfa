package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/rules"
)

type resetOptions struct {
	path   string
	dryRun bool
	rules  ruleFlags
	store  storeFlags
}

func newResetCmd() *cobra.Command {
	opts := &resetOptions{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every backup exclusion under a directory",
		Long: `Walk the --path directory and clear the backup exclusion of every
marked path, except those protected by an allowlist rule.`,
		Example: `  tmbliss reset --path ~/src --dry-run
  tmbliss reset --path ~/src --allowlist-path ~/src/huge-dataset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd, opts, opts.dryRun)
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Directory path")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Only show the paths that would be reset")
	opts.rules.bindAllowlist(cmd, "the reset")
	opts.store.bind(cmd, marker.BackendAuto)
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newShowExcludedCmd() *cobra.Command {
	opts := &resetOptions{}

	cmd := &cobra.Command{
		Use:   "show-excluded",
		Short: "Show the excluded paths under a directory (alias for 'reset --dry-run')",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd, opts, true)
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Directory path")
	opts.rules.bindAllowlist(cmd, "the listing")
	opts.store.bind(cmd, marker.BackendAuto)
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runReset(cmd *cobra.Command, opts *resetOptions, dryRun bool) error {
	store, closeStore, err := openStore(opts.store.options())
	if err != nil {
		return err
	}
	defer closeStore()

	rs := rules.RuleSet{
		AllowlistGlobs: opts.rules.allowlistGlob,
		AllowlistPaths: opts.rules.allowlistPath,
		DryRun:         dryRun,
	}

	eng := newEngine(store, false, newReporter(cmd))
	return eng.Reset(cmd.Context(), rs, opts.path)
}
