// SPDX-License-Identifier: MIT

package product

import (
	"fmt"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
)

// Strategy is the engine chosen for a fitted transformer. It is selected once
// by SelectStrategy and never re-examined per call.
type Strategy int

const (
	// StrategyDenseShort runs DenseShortProduct.
	StrategyDenseShort Strategy = iota + 1

	// StrategySparseShort runs SparseShortProduct.
	StrategySparseShort

	// StrategySparseInfinite runs SparseInfiniteProduct.
	StrategySparseInfinite
)

// String returns a stable label, also used for metrics.
func (s Strategy) String() string {
	switch s {
	case StrategyDenseShort:
		return "dense_short"
	case StrategySparseShort:
		return "sparse_short"
	case StrategySparseInfinite:
		return "sparse_infinite"
	}

	return fmt.Sprintf("Strategy(%d)", int(s))
}

// SelectStrategy maps (exposure type, storage form) to an engine.
//
//	short    + dense  → StrategyDenseShort
//	short    + sparse → StrategySparseShort
//	infinite + sparse → StrategySparseInfinite
//	infinite + dense  → ErrDenseInfinite
func SelectStrategy(e ExposureType, f StorageForm) (Strategy, error) {
	switch {
	case e == Short && f == FormDense:
		return StrategyDenseShort, nil
	case e == Short && f == FormSparse:
		return StrategySparseShort, nil
	case e == Infinite && f == FormSparse:
		return StrategySparseInfinite, nil
	case e == Infinite && f == FormDense:
		return 0, ErrDenseInfinite
	case !e.valid():
		return 0, fmt.Errorf("SelectStrategy(%v): %w", e, ErrInvalidExposureType)
	}

	return 0, fmt.Errorf("SelectStrategy(%v): %w", f, ErrUnsupportedStorage)
}

// Form is the storage form the strategy consumes and produces.
func (s Strategy) Form() StorageForm {
	if s == StrategyDenseShort {
		return FormDense
	}

	return FormSparse
}

// Apply runs the engine on one subject. x must have the strategy's storage form.
func (s Strategy) Apply(x matrix.Matrix, m *combination.Map) (matrix.Matrix, error) {
	switch s {
	case StrategyDenseShort:
		d, ok := x.(*matrix.Dense)
		if !ok {
			return nil, fmt.Errorf("%v got %T: %w", s, x, ErrMixedStorage)
		}
		out, err := DenseShortProduct(d, m)
		if err != nil {
			return nil, err
		}
		return out, nil
	case StrategySparseShort, StrategySparseInfinite:
		sp, ok := x.(*matrix.Sparse)
		if !ok {
			return nil, fmt.Errorf("%v got %T: %w", s, x, ErrMixedStorage)
		}
		var (
			out *matrix.Sparse
			err error
		)
		if s == StrategySparseShort {
			out, err = SparseShortProduct(sp, m)
		} else {
			out, err = SparseInfiniteProduct(sp, m)
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, fmt.Errorf("%v: %w", s, ErrConfiguration)
}
