package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Empty means stderr only.
	FilePath string
	// MaxSizeMB is the maximum size in MB before rotation (default: 10).
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep (default: 5).
	MaxFiles int
	// WriteToStderr also writes records to stderr.
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults for file logging.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig returns configuration for debug mode.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// QuietConfig returns the configuration used when no log level was requested:
// warnings and errors on stderr, no file.
func QuietConfig() Config {
	return Config{Level: "warn", WriteToStderr: true}
}

// Setup builds a logger from cfg and returns it with a cleanup function that
// flushes and closes the log file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	return setup(cfg, os.Stderr)
}

func setup(cfg Config, stderr io.Writer) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if cfg.FilePath == "" {
		out := io.Discard
		if cfg.WriteToStderr {
			out = stderr
		}
		return slog.New(slog.NewTextHandler(out, opts)), func() {}, nil
	}

	if err := EnsureLogDir(cfg.FilePath); err != nil {
		return nil, nil, err
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, stderr)
	}

	logger := slog.New(slog.NewJSONHandler(output, opts))

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}

	return logger, cleanup, nil
}

// ConfigFor picks the logging configuration for a command invocation.
// debug wins over level; an empty level without debug means quiet stderr logging.
func ConfigFor(debug bool, level string) Config {
	switch {
	case debug:
		return DebugConfig()
	case level != "":
		cfg := DefaultConfig()
		cfg.Level = level
		cfg.WriteToStderr = false
		return cfg
	default:
		return QuietConfig()
	}
}

// SetupDefault installs the logger for ConfigFor(debug, level) as the slog default.
func SetupDefault(debug bool, level string) (func(), error) {
	logger, cleanup, err := Setup(ConfigFor(debug, level))
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return cleanup, nil
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts string level to slog.Level (used by the log viewer).
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
