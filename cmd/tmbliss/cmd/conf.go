package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/config"
)

func newConfCmd() *cobra.Command {
	var (
		path   string
		dryRun optionalBool
	)

	cmd := &cobra.Command{
		Use:   "conf",
		Short: "Run with a configuration file",
		Long: `Run with the paths and rules of a YAML or JSON configuration file.

Relative paths in the file are resolved against the file's directory.`,
		Example: `  tmbliss conf --path ~/.config/tmbliss.yaml
  tmbliss conf --path ./tmbliss.json --dry-run true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConf(path, &dryRun)
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(conf.StoreOptions())
			if err != nil {
				return err
			}
			defer closeStore()

			eng := newEngine(store, conf.Git.GlobalExcludes, newReporter(cmd))
			return mark(cmd.Context(), eng, conf.RuleSet(), conf.Paths)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Configuration file path")
	cmd.Flags().Var(&dryRun, "dry-run", "Dry run; overrides the configuration file when given (true|false)")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

// loadConf parses the configuration file, applies the --dry-run override and
// the file's log level.
func loadConf(path string, dryRun *optionalBool) (*config.Conf, error) {
	conf, err := config.Parse(path)
	if err != nil {
		return nil, err
	}
	dryRun.apply(&conf.DryRun)

	if err := applyConfigLogLevel(conf.LogLevel); err != nil {
		return nil, err
	}
	return conf, nil
}
