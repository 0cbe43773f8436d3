package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if FOAMPERF_CONFIG is set
//  3. env (prefix FOAMPERF_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FOAMPERF_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FOAMPERF_LOG_LEVEL, FOAMPERF_HISTORY_PATH, ...
	// Map env keys like FOAMPERF_MIN_CONFIDENCE -> min_confidence (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FOAMPERF_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "foamperf_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min_confidence must be in (0,1], got %g", ErrInvalidConfig, cfg.MinConfidence)
	}
	if cfg.ExcludeFraction < 0 || cfg.ExcludeFraction >= 1 {
		return nil, fmt.Errorf("%w: exclude_fraction must be in [0,1), got %g", ErrInvalidConfig, cfg.ExcludeFraction)
	}
	if cfg.SweepWorkers <= 0 {
		return nil, fmt.Errorf("%w: sweep_workers must be positive, got %d", ErrInvalidConfig, cfg.SweepWorkers)
	}
	return &cfg, nil
}
