// Package output prints the events produced while marking or resetting paths.
//
// Each event is one line, "label: message". Labels are colored when the
// destination is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Event labels.
const (
	LabelNew            = "new"
	LabelExcluded       = "excluded"
	LabelErrorChecking  = "error_checking"
	LabelErrorExcluding = "error_excluding"
	LabelStarted        = "started"
	LabelDryRun         = "dry run"
	LabelEnded          = "ended"
)

// Filter reports whether an event must be suppressed.
type Filter func(label, message string) bool

// SuppressLabels returns a Filter dropping every event whose label is listed.
func SuppressLabels(labels ...string) Filter {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return func(label, _ string) bool {
		_, ok := set[label]
		return ok
	}
}

// Reporter writes events to an io.Writer. It is safe for concurrent use.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	filter Filter
	styles Styles
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithFilter installs a Filter.
func WithFilter(f Filter) Option {
	return func(r *Reporter) { r.filter = f }
}

// WithColor forces colored (true) or plain (false) labels.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		if enabled {
			r.styles = DefaultStyles()
		} else {
			r.styles = NoColorStyles()
		}
	}
}

// New creates a Reporter writing to out. Color is enabled when out is a
// terminal and NO_COLOR is unset.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{out: out, styles: NoColorStyles()}
	if IsTTY(out) && !DetectNoColor() {
		r.styles = DefaultStyles()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Event prints "label: message" unless the filter suppresses it.
// Errors from writing are intentionally ignored for console output.
func (r *Reporter) Event(label, message string) {
	slog.Debug("event", slog.String("label", label), slog.String("message", message))

	if r.filter != nil && r.filter(label, message) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "%s: %s\n", r.styles.Label(label), message)
}

// Eventf prints a formatted event.
func (r *Reporter) Eventf(label, format string, args ...any) {
	r.Event(label, fmt.Sprintf(format, args...))
}

// Line prints message on its own, unfiltered.
func (r *Reporter) Line(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.out, message)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
