// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All defaults live here, never inline in formula or pipeline code.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// HistoryPath is the SQLite file for the analysis history.
	// Empty disables history recording.
	HistoryPath string `koanf:"history_path"`

	// MetricsAddr exposes the Prometheus registry when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// MinConfidence is the patch-detection acceptance threshold in (0,1].
	MinConfidence float64 `koanf:"min_confidence"`

	// ExcludeFraction is the initial-transient fraction dropped by the
	// exclude_initial reduction mode, in [0,1).
	ExcludeFraction float64 `koanf:"exclude_fraction"`

	// SweepWorkers bounds concurrent run analyses in sweep mode.
	SweepWorkers int `koanf:"sweep_workers"`

	// ExcludedPatches are never treated as model geometry. Entries may be
	// glob patterns. Empty keeps the built-in exclusion list.
	ExcludedPatches []string `koanf:"excluded_patches"`
}

// New creates a Config with documented defaults. Context is accepted first
// to satisfy the project-wide convention; it is reserved for future use and
// currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		MinConfidence:   0.6,
		ExcludeFraction: 0.2,
		SweepWorkers:    runtime.NumCPU(),
	}
}
