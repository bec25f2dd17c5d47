// SPDX-License-Identifier: MIT

// Package product - sparse infinite-exposure product.
//
// Semantics:
//   - A stored entry (r, c, v) means feature c starts at interval r and stays
//     active at every later interval; nothing else is stored for c.
//   - Two started features i, j are simultaneously active from
//     max(start_i, start_j) on, which is again stored as a single entry.
//
// Sizing:
//   - The result holds exactly nnz + p·(p−1)/2 entries, p being the number of
//     started columns. Nothing is preallocated to n_output·nnz and no slot is
//     left as a zero placeholder: an unused (0, 0, 0) slot would be summed
//     into a legitimate (0, 0) entry on assembly.

package product

import (
	"fmt"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
)

const tagSparseInfinite = "SparseInfiniteProduct"

// exposureStart is one row of the presence table.
type exposureStart struct {
	row     int     // interval at which the feature starts
	value   float64 // stored value at the start
	present bool
}

// SparseInfiniteProduct augments a sparse infinite-exposure matrix with pair
// activation entries.
// MAIN DESCRIPTION:
//   - Pass through every stored entry of x unchanged.
//   - For each pair (i, j) with both features started, emit exactly one entry
//     (max(start_i, start_j), m.Index(i, j), v_i * v_j).
//
// Implementation:
//   - Stage 1: build the presence table (indexed by column) in one O(nnz) pass;
//     a second entry in a column is rejected with ErrDuplicateStart.
//   - Stage 2: collect started columns in ascending order; p of them yield
//     p·(p−1)/2 derived entries, which fixes the output size up front.
//   - Stage 3: copy pass-through coordinates, then emit derived entries in
//     column order by looking both starts up in the table.
//
// Errors:
//   - ErrShapeMismatch when x.Cols() differs from the map.
//   - ErrDuplicateStart (ErrDataIntegrity) on a repeated column.
//   - ErrProductOverflow (ErrDataIntegrity) when v_i * v_j is not finite.
//
// Complexity:
//   - Time O(nnz + n + p²) with p ≤ n; the coordinate arrays are read once.
//   - Space O(n + nnz + p²).
func SparseInfiniteProduct(x *matrix.Sparse, m *combination.Map) (*matrix.Sparse, error) {
	if err := checkOperands(x, m); err != nil {
		return nil, productErrorf(tagSparseInfinite, err)
	}
	n := m.NFeatures()

	// Stage 1: presence table.
	table := make([]exposureStart, n)
	for _, e := range x.All() {
		s := &table[e.Col]
		if s.present {
			return nil, productErrorf(tagSparseInfinite, fmt.Errorf(
				"column %d stored at rows %d and %d: %w", e.Col, s.row, e.Row, ErrDuplicateStart))
		}
		*s = exposureStart{row: e.Row, value: e.Value, present: true}
	}

	// Stage 2: started columns, ascending, so pairs come out in column order.
	started := make([]int, 0, n)
	for c := 0; c < n; c++ {
		if table[c].present {
			started = append(started, c)
		}
	}
	p := len(started)
	total := x.NNZ() + p*(p-1)/2

	// Stage 3: exact-size fill.
	rowIdx := make([]int, total)
	colIdx := make([]int, total)
	vals := make([]float64, total)
	w := x.CopyCoords(rowIdx, colIdx, vals)
	for a := 0; a < p-1; a++ {
		si := table[started[a]]
		for b := a + 1; b < p; b++ {
			sj := table[started[b]]
			col, _ := m.Index(started[a], started[b])
			row, v := max(si.row, sj.row), si.value*sj.value
			if err := checkPairValue(row, combination.Pair{I: started[a], J: started[b]}, v); err != nil {
				return nil, productErrorf(tagSparseInfinite, err)
			}
			rowIdx[w], colIdx[w], vals[w] = row, col, v
			w++
		}
	}

	out, err := matrix.NewSparseOwned(x.Rows(), m.NOutputFeatures(), rowIdx, colIdx, vals)
	if err != nil {
		return nil, productErrorf(tagSparseInfinite, err)
	}

	return out, nil
}
