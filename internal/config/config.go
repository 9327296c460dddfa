// Package config loads tmbliss run configuration files.
//
// A configuration file is YAML or JSON (JSON is read by the YAML decoder).
// Values are applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. The configuration file
//  3. Environment variables (TMBLISS_*)
//
// Command-line flags are applied by the caller on top of the result.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/tmbliss/internal/errors"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/output"
	"github.com/Aman-CERP/tmbliss/internal/rules"
)

// DefaultWatchDebounce is the quiet period before a watch-mode re-run.
const DefaultWatchDebounce = "2s"

// Conf is a complete run configuration.
type Conf struct {
	// Paths are the root directories to process. Required.
	Paths []string `yaml:"paths" json:"paths"`

	AllowlistGlob []string `yaml:"allowlist_glob" json:"allowlist_glob"`
	AllowlistPath []string `yaml:"allowlist_path" json:"allowlist_path"`
	SkipGlob      []string `yaml:"skip_glob" json:"skip_glob"`
	SkipPath      []string `yaml:"skip_path" json:"skip_path"`
	ExcludePaths  []string `yaml:"exclude_paths" json:"exclude_paths"`

	DryRun     bool `yaml:"dry_run" json:"dry_run"`
	SkipErrors bool `yaml:"skip_errors" json:"skip_errors"`

	Store   StoreConfig   `yaml:"store" json:"store"`
	Git     GitConfig     `yaml:"git" json:"git"`
	Service ServiceConfig `yaml:"service" json:"service"`

	// LogLevel is debug, info, warn or error; empty keeps the CLI default.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// StoreConfig selects the marker store.
type StoreConfig struct {
	// Backend is auto, xattr, tmutil, sqlite or memory.
	Backend string `yaml:"backend" json:"backend"`
	// Path is the sqlite database file.
	Path string `yaml:"path" json:"path"`
	// Attribute overrides the extended attribute name.
	Attribute string `yaml:"attribute" json:"attribute"`
}

// GitConfig tunes version-control integration.
type GitConfig struct {
	// GlobalExcludes also applies the system and user-wide git excludes files.
	GlobalExcludes bool `yaml:"global_excludes" json:"global_excludes"`
}

// ServiceConfig tunes the service command.
type ServiceConfig struct {
	// Suppress lists event labels the service does not print.
	Suppress []string `yaml:"suppress" json:"suppress"`
	// WatchDebounce is the quiet period before re-running in watch mode.
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
	// LockPath is the file locked while a service run is active.
	LockPath string `yaml:"lock_path" json:"lock_path"`
}

// NewConf returns a Conf holding the defaults.
func NewConf() *Conf {
	return &Conf{
		Store: StoreConfig{
			Backend: marker.BackendAuto,
		},
		Service: ServiceConfig{
			Suppress:      []string{output.LabelExcluded},
			WatchDebounce: DefaultWatchDebounce,
			LockPath:      DefaultLockPath(),
		},
	}
}

// DataDir returns ~/.tmbliss, the directory for logs, locks and databases.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".tmbliss")
	}
	return filepath.Join(home, ".tmbliss")
}

// DefaultLockPath returns the default service lock file.
func DefaultLockPath() string {
	return filepath.Join(DataDir(), "service.lock")
}

// Parse loads the configuration file at path, applies environment overrides
// and validates the result. Relative paths inside the file are resolved
// against the file's directory.
func Parse(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New(errors.ErrCodeConfigNotFound,
				fmt.Sprintf("Cannot open configuration at %s", path), err).
				WithPath(path).
				WithSuggestion("Check the --path value")
		}
		return nil, errors.ConfigError(
			fmt.Sprintf("Cannot open configuration at %s: %v", path, err), err).WithPath(path)
	}

	cfg := NewConf()
	// Keys absent from the file keep their defaults.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigError(
			fmt.Sprintf("Cannot parse configuration at %s: %v", path, err), err).WithPath(path)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.ConfigError(
			fmt.Sprintf("Cannot resolve configuration directory of %s: %v", path, err), err)
	}
	cfg.resolvePaths(base)

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(
			fmt.Sprintf("Invalid configuration at %s: %v", path, err), err).WithPath(path)
	}

	return cfg, nil
}

// resolvePaths makes every path field absolute relative to base.
func (c *Conf) resolvePaths(base string) {
	resolveAll := func(paths []string) {
		for i, p := range paths {
			paths[i] = resolve(base, p)
		}
	}
	resolveAll(c.Paths)
	resolveAll(c.SkipPath)
	resolveAll(c.AllowlistPath)
	resolveAll(c.ExcludePaths)

	if c.Store.Path != "" {
		c.Store.Path = resolve(base, c.Store.Path)
	}
	if c.Service.LockPath != "" {
		c.Service.LockPath = resolve(base, c.Service.LockPath)
	}
}

// resolve expands a leading "~/" and joins relative paths onto base.
func resolve(base, p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// ApplyEnvOverrides applies TMBLISS_* environment variable overrides.
// Unparseable boolean values are ignored.
func (c *Conf) ApplyEnvOverrides() {
	if v := os.Getenv("TMBLISS_DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DryRun = b
		}
	}
	if v := os.Getenv("TMBLISS_SKIP_ERRORS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SkipErrors = b
		}
	}
	if v := os.Getenv("TMBLISS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TMBLISS_STORE"); v != "" {
		c.Store.Backend = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Conf) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("paths must list at least one directory")
	}

	if c.Store.Backend != "" && !slices.Contains(marker.Backends, strings.ToLower(c.Store.Backend)) {
		return fmt.Errorf("store.backend must be one of %v, got %s", marker.Backends, c.Store.Backend)
	}

	if c.LogLevel != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.LogLevel)] {
			return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
		}
	}

	if _, err := c.WatchDebounce(); err != nil {
		return err
	}

	return nil
}

// WatchDebounce returns the parsed service.watch_debounce value.
func (c *Conf) WatchDebounce() (time.Duration, error) {
	raw := c.Service.WatchDebounce
	if raw == "" {
		raw = DefaultWatchDebounce
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("service.watch_debounce must be a duration, got %s", c.Service.WatchDebounce)
	}
	if d <= 0 {
		return 0, fmt.Errorf("service.watch_debounce must be positive, got %s", c.Service.WatchDebounce)
	}
	return d, nil
}

// RuleSet converts the configuration into the rule set of a run.
func (c *Conf) RuleSet() rules.RuleSet {
	return rules.RuleSet{
		SkipGlobs:      slices.Clone(c.SkipGlob),
		SkipPaths:      slices.Clone(c.SkipPath),
		AllowlistGlobs: slices.Clone(c.AllowlistGlob),
		AllowlistPaths: slices.Clone(c.AllowlistPath),
		ExcludePaths:   slices.Clone(c.ExcludePaths),
		DryRun:         c.DryRun,
		SkipErrors:     c.SkipErrors,
	}
}

// StoreOptions converts the store section into marker options.
func (c *Conf) StoreOptions() marker.Options {
	return marker.Options{
		Backend:   strings.ToLower(c.Store.Backend),
		Path:      c.Store.Path,
		Attribute: c.Store.Attribute,
	}
}
