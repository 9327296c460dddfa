package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/output"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Target describes what a run of tmbliss would touch.
type Target struct {
	// Roots are the directories to be walked.
	Roots []string
	// Store is the opened marker store.
	Store marker.Store
	// Backend is the resolved store backend name.
	Backend string
	// Watch enables the watch limit check.
	Watch bool
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose bool
	color   bool
	output  io.Writer
	lookup  func(string) (string, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithColor enables styled status tags.
func WithColor(color bool) Option {
	return func(c *Checker) {
		c.color = color
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output: os.Stdout,
		lookup: exec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check that applies to target.
func (c *Checker) RunAll(ctx context.Context, target Target) []CheckResult {
	results := []CheckResult{c.CheckRoots(target.Roots)}

	if target.Store != nil {
		results = append(results, c.CheckStore(ctx, target.Store, probeDir(target.Roots)))
	}
	if target.Backend == marker.BackendTMUtil {
		results = append(results, c.CheckTool("tmutil"))
	}

	results = append(results, c.CheckFileDescriptors())
	if target.Watch {
		results = append(results, c.CheckWatchLimit())
	}
	return results
}

// probeDir picks the directory the store probe writes into: the first
// usable root, so the probe sees the filesystem the real run will mark.
func probeDir(roots []string) string {
	for _, root := range roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root
		}
	}
	return os.TempDir()
}

// CheckRoots verifies every root is a readable directory.
func (c *Checker) CheckRoots(roots []string) CheckResult {
	result := CheckResult{
		Name:     "roots",
		Required: true,
	}

	if len(roots) == 0 {
		result.Status = StatusWarn
		result.Message = "no paths given"
		result.Details = "Pass --path to check the directories tmbliss will walk"
		return result
	}

	var problems []string
	for _, root := range roots {
		if err := readableDir(root); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%d of %d unusable", len(problems), len(roots))
		result.Details = strings.Join(problems, "; ")
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d readable", len(roots))
	return result
}

func readableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.ReadDir(1)
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// CheckStore marks, verifies and unmarks a scratch file in dir.
func (c *Checker) CheckStore(_ context.Context, store marker.Store, dir string) CheckResult {
	result := CheckResult{
		Name:     "store",
		Required: true,
	}

	f, err := os.CreateTemp(dir, ".tmbliss-doctor-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create probe file: %v", err)
		return result
	}
	probe := f.Name()
	_ = f.Close()
	defer func() { _ = os.Remove(probe) }()

	if err := roundTrip(store, probe); err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		result.Details = fmt.Sprintf("Probe file was %s; try another --store", probe)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("mark round-trip OK in %s", dir)
	return result
}

func roundTrip(store marker.Store, path string) error {
	if err := store.AddExclusion(path); err != nil {
		return fmt.Errorf("mark: %w", err)
	}
	marked, err := store.IsExcluded(path)
	if err != nil {
		return fmt.Errorf("read mark: %w", err)
	}
	if !marked {
		_ = store.RemoveExclusion(path)
		return fmt.Errorf("mark did not persist")
	}
	if err := store.RemoveExclusion(path); err != nil {
		return fmt.Errorf("unmark: %w", err)
	}
	if marked, err = store.IsExcluded(path); err != nil || marked {
		return fmt.Errorf("unmark did not persist")
	}
	return nil
}

// CheckTool verifies an external binary is on PATH.
func (c *Checker) CheckTool(name string) CheckResult {
	result := CheckResult{
		Name:     name,
		Required: true,
	}

	path, err := c.lookup(name)
	if err != nil {
		result.Status = StatusFail
		result.Message = "not found on PATH"
		result.Details = "Use --store xattr or --store sqlite instead"
		return result
	}

	result.Status = StatusPass
	result.Message = path
	return result
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "tmbliss System Check")
	_, _ = fmt.Fprintln(c.output, "====================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", c.statusTag(r.Status), r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "       %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errs []string
	for _, r := range results {
		if r.IsCritical() {
			errs = append(errs, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	printList(c.output, "error(s)", errs)
	printList(c.output, "warning(s)", warnings)
}

func printList(w io.Writer, what string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d %s:\n", len(items), what)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

func (c *Checker) statusTag(status CheckStatus) string {
	tag := status.String()
	if !c.color {
		return tag
	}

	color := output.ColorLime
	switch status {
	case StatusWarn:
		color = output.ColorYellow
	case StatusFail:
		color = output.ColorRed
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(tag)
}
