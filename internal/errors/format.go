package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// The full wrapped chain is shown so the failing path stays visible.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", err.Error()))

	var e *Error
	if !stderrors.As(err, &e) {
		e = Wrap(ErrCodeInternal, err)
	}

	if e.Path != "" {
		sb.WriteString(fmt.Sprintf("  Path: %s\n", e.Path))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", e.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", e.Code))

	return sb.String()
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	var e *Error
	if !stderrors.As(err, &e) {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error":      err.Error(),
		"error_code": e.Code,
		"category":   string(e.Category),
	}
	if e.Path != "" {
		result["path"] = e.Path
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}

// LogAttrs returns FormatForLog as slog key-value arguments, sorted by key.
func LogAttrs(err error) []any {
	fields := FormatForLog(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return attrs
}
