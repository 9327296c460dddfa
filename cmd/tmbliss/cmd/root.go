// Package cmd provides the CLI commands for tmbliss.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/errors"
	"github.com/Aman-CERP/tmbliss/internal/logging"
	"github.com/Aman-CERP/tmbliss/internal/profiling"
	"github.com/Aman-CERP/tmbliss/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// Profiling flags
var (
	profileOpts profiling.Options
	profile     *profiling.Session
)

// NewRootCmd creates the root command for the tmbliss CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tmbliss",
		Short: "Keep development artifacts out of your backups",
		Long: `tmbliss walks your project directories and marks everything version
control ignores (node_modules, build output, caches) as excluded from backup.

Paths can be protected with allowlist rules, whole subtrees can be skipped,
and a .tmbliss file in any directory adds skip globs for that directory.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	cmd.SetVersionTemplate("tmbliss version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.tmbliss/logs/")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newConfCmd())
	cmd.AddCommand(newServiceCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newShowExcludedCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newMarkdownHelpCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging installs the process logger and starts any
// requested profiles. Without --debug only warnings reach stderr; commands
// reading a config file may raise the level later.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if err := setupLogging(""); err != nil {
		return err
	}
	if !profileOpts.Enabled() {
		return nil
	}

	s, err := profiling.Start(profileOpts)
	if err != nil {
		return err
	}
	profile = s
	slog.Debug("Profiling started",
		slog.String("cpu", profileOpts.CPU),
		slog.String("mem", profileOpts.Heap),
		slog.String("trace", profileOpts.Trace))
	return nil
}

// stopProfilingAndLogging flushes profiles, then closes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	err := stopProfiling()
	_ = stopLogging(nil, nil)
	return err
}

func stopProfiling() error {
	if profile == nil {
		return nil
	}
	err := profile.Stop()
	profile = nil
	return err
}

func setupLogging(level string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}

	cleanup, err := logging.SetupDefault(debugMode, level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup

	if debugMode {
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

// applyConfigLogLevel switches to file logging at the config's log_level
// unless --debug already did.
func applyConfigLogLevel(level string) error {
	if debugMode || level == "" {
		return nil
	}
	return setupLogging(level)
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command, printing any error in CLI format.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		_ = stopProfiling()
		_ = stopLogging(nil, nil)
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}
