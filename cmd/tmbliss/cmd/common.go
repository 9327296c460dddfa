package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/engine"
	"github.com/Aman-CERP/tmbliss/internal/gitignore"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/output"
	"github.com/Aman-CERP/tmbliss/internal/rules"
)

// timestampLayout formats the started/ended service events.
const timestampLayout = "2006-01-02 15:04:05.000000000 -07:00"

// ruleFlags holds the rule flags shared by run, list, reset and show-excluded.
type ruleFlags struct {
	allowlistGlob []string
	allowlistPath []string
	skipGlob      []string
	skipPath      []string
	excludePath   []string
	skipErrors    bool
}

func (f *ruleFlags) bindAllowlist(cmd *cobra.Command, what string) {
	cmd.Flags().StringArrayVar(&f.allowlistGlob, "allowlist-glob", nil,
		fmt.Sprintf("Keep glob-matched paths out of %s [--allowlist-glob ... --allowlist-glob ...]", what))
	cmd.Flags().StringArrayVar(&f.allowlistPath, "allowlist-path", nil,
		fmt.Sprintf("Keep paths out of %s [--allowlist-path ./1 --allowlist-path ./2]", what))
}

func (f *ruleFlags) bindSkip(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.skipGlob, "skip-glob", nil,
		"Skip glob-matched paths; unlike the allowlist, their children are not processed either")
	cmd.Flags().StringArrayVar(&f.skipPath, "skip-path", nil,
		"Skip paths; unlike the allowlist, their children are not processed either")
	cmd.Flags().StringArrayVar(&f.excludePath, "exclude-path", nil,
		"Mark these paths regardless of version control rules")
	cmd.Flags().BoolVar(&f.skipErrors, "skip-errors", false,
		"Report marker failures and continue instead of stopping")
}

func (f *ruleFlags) ruleSet(dryRun bool) rules.RuleSet {
	return rules.RuleSet{
		SkipGlobs:      f.skipGlob,
		SkipPaths:      f.skipPath,
		AllowlistGlobs: f.allowlistGlob,
		AllowlistPaths: f.allowlistPath,
		ExcludePaths:   f.excludePath,
		DryRun:         dryRun,
		SkipErrors:     f.skipErrors,
	}
}

// storeFlags selects the marker store from the command line.
type storeFlags struct {
	backend        string
	path           string
	attribute      string
	globalExcludes bool
}

func (f *storeFlags) bind(cmd *cobra.Command, defaultBackend string) {
	cmd.Flags().StringVar(&f.backend, "store", defaultBackend,
		fmt.Sprintf("Marker store: %v", marker.Backends))
	cmd.Flags().StringVar(&f.path, "store-path", "", "Database file of the sqlite store (default ~/.tmbliss/exclusions.db)")
	cmd.Flags().StringVar(&f.attribute, "attribute", "", "Extended attribute used by the xattr store")
}

func (f *storeFlags) bindGit(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.globalExcludes, "global-excludes", false,
		"Also apply the system and user git excludes files")
}

func (f *storeFlags) options() marker.Options {
	return marker.Options{Backend: f.backend, Path: f.path, Attribute: f.attribute}
}

// optionalBool is a --flag=true|false value that remembers whether it was set.
type optionalBool struct {
	value bool
	set   bool
}

func (b *optionalBool) String() string {
	if !b.set {
		return ""
	}
	return strconv.FormatBool(b.value)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.value, b.set = v, true
	return nil
}

func (b *optionalBool) Type() string {
	return "bool"
}

// apply overwrites *dst only when the flag was given.
func (b *optionalBool) apply(dst *bool) {
	if b.set {
		*dst = b.value
	}
}

// openStore opens the marker store. The returned function closes it.
func openStore(opts marker.Options) (marker.Store, func(), error) {
	store, err := marker.Open(opts)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := marker.Close(store); err != nil {
			slog.Warn("failed to close marker store", slog.String("error", err.Error()))
		}
	}
	return store, closeFn, nil
}

// newEngine builds an engine over store reporting to reporter.
func newEngine(store marker.Store, globalExcludes bool, reporter engine.Reporter) *engine.Engine {
	ignores := gitignore.New(gitignore.WithGlobalExcludes(globalExcludes))
	return engine.New(store, ignores, reporter)
}

func newReporter(cmd *cobra.Command, opts ...output.Option) *output.Reporter {
	return output.New(cmd.OutOrStdout(), opts...)
}

func now() string {
	return time.Now().Format(timestampLayout)
}
