// SPDX-License-Identifier: MIT
// Package product: sentinel error set.
//
// Three category sentinels classify every failure; specific sentinels wrap
// exactly one category so callers can match either level with errors.Is:
//
//	errors.Is(err, ErrShapeMismatch)  // the precise condition
//	errors.Is(err, ErrConfiguration)  // the category
//
// All errors are returned synchronously by the call that detects them.

package product

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
)

// Categories.
var (
	// ErrConfiguration covers invalid options and batches that do not match
	// the configured or fitted shape and storage form.
	ErrConfiguration = errors.New("product: configuration error")

	// ErrDataIntegrity signals input data that breaks an exposure invariant.
	ErrDataIntegrity = errors.New("product: data integrity violation")

	// ErrUsage signals an API call made in the wrong lifecycle state.
	ErrUsage = errors.New("product: usage error")
)

// Configuration errors.
var (
	// ErrInvalidExposureType indicates an exposure type other than Short or Infinite.
	ErrInvalidExposureType = fmt.Errorf("%w: exposure type must be short or infinite", ErrConfiguration)

	// ErrInvalidParallelism indicates parallelism == 0 or < AllCPUs.
	ErrInvalidParallelism = fmt.Errorf("%w: parallelism must be positive or AllCPUs", ErrConfiguration)

	// ErrEmptyBatch indicates a batch with no subjects.
	ErrEmptyBatch = fmt.Errorf("%w: batch must contain at least one subject", ErrConfiguration)

	// ErrShapeMismatch indicates subjects whose (n_intervals, n_features) differ
	// from each other or from the fitted shape.
	ErrShapeMismatch = fmt.Errorf("%w: shape mismatch", ErrConfiguration)

	// ErrMixedStorage indicates subjects stored in different forms, or a batch
	// whose form differs from the fitted one.
	ErrMixedStorage = fmt.Errorf("%w: mixed storage forms", ErrConfiguration)

	// ErrUnsupportedStorage indicates a Matrix implementation other than
	// *matrix.Dense or *matrix.Sparse.
	ErrUnsupportedStorage = fmt.Errorf("%w: unsupported storage form", ErrConfiguration)

	// ErrDenseInfinite indicates dense storage combined with infinite exposure.
	ErrDenseInfinite = fmt.Errorf("%w: infinite exposures must be stored sparse", ErrConfiguration)
)

// Data integrity errors.
var (
	// ErrDuplicateStart indicates more than one stored entry in one column of
	// one subject under infinite exposure.
	ErrDuplicateStart = fmt.Errorf("%w: infinite exposure started more than once", ErrDataIntegrity)

	// ErrProductOverflow indicates a pair product that is not finite although
	// every stored input value is.
	ErrProductOverflow = fmt.Errorf("%w: pair product overflows float64", ErrDataIntegrity)
)

// Usage errors.
var (
	// ErrNotFitted indicates Transform or Mapper was called before Fit.
	ErrNotFitted = fmt.Errorf("%w: not fitted", ErrUsage)
)

// productErrorf wraps err with an operation tag.
func productErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// checkPairValue rejects a non-finite product of pair p at row. The error
// matches both ErrProductOverflow and matrix.ErrNaNInf.
func checkPairValue(row int, p combination.Pair, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("row %d pair %v: %w: %w", row, p, ErrProductOverflow, matrix.ErrNaNInf)
	}

	return nil
}
