package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/errors"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/output"
	"github.com/Aman-CERP/tmbliss/internal/preflight"
)

type doctorOptions struct {
	paths   []string
	store   storeFlags
	watch   bool
	verbose bool
	noColor bool
	json    bool
}

// doctorReport is the --json output.
type doctorReport struct {
	Status string              `json:"status"`
	Checks []doctorCheckResult `json:"checks"`
}

type doctorCheckResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Required bool   `json:"required"`
	Details  string `json:"details,omitempty"`
}

func newDoctorCmd() *cobra.Command {
	opts := doctorOptions{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that this machine can run tmbliss",
		Long: `Check the directories, marker store and system limits a run would use.

The store check marks, reads back and clears a scratch file in the first
path, so it exercises the same filesystem the real run will mark.`,
		Example: `  tmbliss doctor --path ~/src
  tmbliss doctor --path ~ --store xattr --watch -v
  tmbliss doctor --path ~/src --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.paths, "path", nil, "Directory a run would walk [--path ./1 --path ./2]")
	opts.store.bind(cmd, marker.BackendAuto)
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Also check the limits used by service --watch")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show details for each check")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, opts doctorOptions) error {
	store, closeStore, err := openStore(opts.store.options())
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	checker := preflight.New(
		preflight.WithOutput(out),
		preflight.WithVerbose(opts.verbose),
		preflight.WithColor(!opts.noColor && output.IsTTY(out) && !output.DetectNoColor()),
	)

	results := checker.RunAll(cmd.Context(), preflight.Target{
		Roots:   opts.paths,
		Store:   store,
		Backend: marker.ResolveBackend(opts.store.backend),
		Watch:   opts.watch,
	})
	if opts.json {
		if err := writeDoctorJSON(out, checker, results); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return errors.New(errors.ErrCodePreflight, "System check failed", nil).
			WithSuggestion("Run tmbliss doctor -v for details")
	}
	return nil
}

func writeDoctorJSON(out io.Writer, checker *preflight.Checker, results []preflight.CheckResult) error {
	report := doctorReport{
		Status: checker.SummaryStatus(results),
		Checks: make([]doctorCheckResult, 0, len(results)),
	}
	for _, r := range results {
		report.Checks = append(report.Checks, doctorCheckResult{
			Name:     r.Name,
			Status:   r.Status.String(),
			Message:  r.Message,
			Required: r.Required,
			Details:  r.Details,
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
