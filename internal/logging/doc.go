// Package logging configures tmbliss diagnostics on top of log/slog.
//
// With --debug (or a log_level in the config file) JSON records are written
// to a size-rotated file under ~/.tmbliss/logs/ and tee'd to stderr. Without
// it only warnings and errors reach stderr, as plain text.
//
// Marking events ("new: /path") are not log records; they are printed by the
// output package and only mirrored here at debug level.
package logging
