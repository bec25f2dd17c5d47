// SPDX-License-Identifier: MIT

// Package config holds the runtime configuration of the lfp command:
// exposure semantics, fan-out width, logging, cohort store and metrics.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/katalvlaran/lvlath-lfp/product"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the top-level configuration.
type Config struct {
	// ExposureType is "short" or "infinite".
	ExposureType string `yaml:"exposure_type"`

	// Parallelism is the subject fan-out width; -1 uses every CPU.
	Parallelism int `yaml:"parallelism"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StoreConfig selects the cohort database.
type StoreConfig struct {
	// Driver is "sqlite" or "pgx".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// MetricsConfig controls the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ExposureType: product.DefaultExposureType.String(),
		Parallelism:  product.DefaultParallelism,
		LogLevel:     "info",
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "lfp.db",
		},
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if _, err := product.ParseExposureType(c.ExposureType); err != nil {
		errs = append(errs, fmt.Errorf("exposure_type %q: must be short or infinite", c.ExposureType))
	}
	if c.Parallelism == 0 || c.Parallelism < product.AllCPUs {
		errs = append(errs, fmt.Errorf("parallelism %d: must be positive or -1", c.Parallelism))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case "sqlite", "pgx":
	default:
		errs = append(errs, fmt.Errorf("store.driver %q: must be sqlite or pgx", c.Store.Driver))
	}
	if c.Store.DSN == "" {
		errs = append(errs, errors.New("store.dsn: required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}

	return lvl
}

// ProductOptions converts the product-related fields into options for
// product.New. Validate must have succeeded.
func (c *Config) ProductOptions(logger *slog.Logger) ([]product.Option, error) {
	exposure, err := product.ParseExposureType(c.ExposureType)
	if err != nil {
		return nil, err
	}

	return []product.Option{
		product.WithExposureType(exposure),
		product.WithParallelism(c.Parallelism),
		product.WithLogger(logger),
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", s, err)
	}

	return lvl, nil
}
