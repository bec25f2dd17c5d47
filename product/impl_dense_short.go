// SPDX-License-Identifier: MIT

package product

import (
	"fmt"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
)

const tagDenseShort = "DenseShortProduct"

// DenseShortProduct augments a dense short-exposure matrix with pair products.
// MAIN DESCRIPTION:
//   - Output columns 0..n-1 copy x verbatim.
//   - Output column m.Index(i, j) is the per-row product x[:, i] * x[:, j].
//
// Implementation:
//   - Stage 1: validate operands and shape against the map.
//   - Stage 2: allocate the n_intervals × n_output result.
//   - Stage 3: copy base columns, then fill one product column per pair.
//
// Errors:
//   - ErrShapeMismatch when x.Cols() differs from the map.
//   - ErrProductOverflow (ErrDataIntegrity) when a row product is not finite.
//
// Complexity:
//   - Time O(r * n_output), Space O(r * n_output).
func DenseShortProduct(x *matrix.Dense, m *combination.Map) (*matrix.Dense, error) {
	if err := checkOperands(x, m); err != nil {
		return nil, productErrorf(tagDenseShort, err)
	}
	out, err := matrix.NewDense(x.Rows(), m.NOutputFeatures())
	if err != nil {
		return nil, productErrorf(tagDenseShort, err)
	}

	// Base features pass through unchanged.
	for j := 0; j < m.NFeatures(); j++ {
		col, err := x.Col(j)
		if err != nil {
			return nil, productErrorf(tagDenseShort, err)
		}
		if err = out.SetCol(j, col); err != nil {
			return nil, productErrorf(tagDenseShort, err)
		}
	}

	// One product column per pair, in column order.
	for k, p := range m.Pairs() {
		prod, err := x.ColProduct(p.I, p.J)
		if err != nil {
			return nil, productErrorf(tagDenseShort, err)
		}
		for r, v := range prod {
			if err = checkPairValue(r, p, v); err != nil {
				return nil, productErrorf(tagDenseShort, err)
			}
		}
		if err = out.SetCol(m.NFeatures()+k, prod); err != nil {
			return nil, productErrorf(tagDenseShort, err)
		}
	}

	return out, nil
}

// checkOperands validates a subject matrix against the combination map.
func checkOperands(x matrix.Matrix, m *combination.Map) error {
	if err := matrix.ValidateNotNil(x); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: nil combination map", ErrConfiguration)
	}
	if x.Cols() != m.NFeatures() {
		return fmt.Errorf("%d features, map built for %d: %w", x.Cols(), m.NFeatures(), ErrShapeMismatch)
	}

	return nil
}
