// SPDX-License-Identifier: MIT

// Package product: functional configuration for FeaturesProduct.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Values that a user may get wrong (exposure type, parallelism) are
//     validated by New and reported as ErrConfiguration.
//   - Panic only on programmer error (nil logger).
package product

import (
	"log/slog"
	"runtime"
)

// AllCPUs is the parallelism sentinel meaning "use every available execution unit".
const AllCPUs = -1

// Defaults (single source of truth).
const (
	// DefaultExposureType matches the historical default of the transformer.
	DefaultExposureType = Infinite

	// DefaultParallelism fans out over all execution units.
	DefaultParallelism = AllCPUs
)

const panicNilLogger = "product: WithLogger: logger must not be nil"

// Option mutates internal options.
type Option func(*options)

// options is the resolved configuration of a FeaturesProduct.
type options struct {
	exposure    ExposureType
	parallelism int
	logger      *slog.Logger
}

// defaultOptions returns the documented defaults.
func defaultOptions() options {
	return options{
		exposure:    DefaultExposureType,
		parallelism: DefaultParallelism,
		logger:      slog.Default(),
	}
}

// WithExposureType selects short or infinite exposure semantics.
func WithExposureType(e ExposureType) Option {
	return func(o *options) { o.exposure = e }
}

// WithParallelism sets the batch fan-out width. Use AllCPUs for one worker
// per available execution unit.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithLogger routes debug logs to l.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *options) { o.logger = l }
}

// validate checks user-controlled values.
func (o options) validate() error {
	if !o.exposure.valid() {
		return ErrInvalidExposureType
	}
	if o.parallelism == 0 || o.parallelism < AllCPUs {
		return ErrInvalidParallelism
	}

	return nil
}

// workers resolves the fan-out width for a batch of n subjects.
func (o options) workers(n int) int {
	w := o.parallelism
	if w == AllCPUs {
		w = runtime.GOMAXPROCS(0)
	}

	return max(1, min(w, n))
}
