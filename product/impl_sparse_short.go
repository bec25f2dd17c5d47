// SPDX-License-Identifier: MIT

package product

import (
	"slices"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
)

const tagSparseShort = "SparseShortProduct"

// columnSupport is the stored support of one column: its rows in ascending
// order and the value at each row (duplicates summed).
type columnSupport struct {
	rows []int
	vals map[int]float64
}

// SparseShortProduct augments a sparse short-exposure matrix with pair products.
// MAIN DESCRIPTION:
//   - Pass through every stored entry of x unchanged.
//   - For each pair (i, j) emit (r, m.Index(i, j), v_i * v_j) for every row r
//     stored in both columns i and j; other rows stay implicit zeros.
//
// Implementation:
//   - Stage 1: index x by column in one O(nnz) pass.
//   - Stage 2: count intersections per pair to size the output exactly.
//   - Stage 3: copy pass-through coordinates, then fill products pair by pair
//     (rows ascending within a pair).
//
// Behavior highlights:
//   - Entries stored twice at one coordinate are summed before multiplying,
//     matching the assembly rule of matrix.Sparse.
//   - A non-finite product fails with ErrProductOverflow (ErrDataIntegrity).
//
// Complexity:
//   - Time O(nnz + Σ_pairs min(|S_i|, |S_j|)), Space O(nnz + emitted).
func SparseShortProduct(x *matrix.Sparse, m *combination.Map) (*matrix.Sparse, error) {
	if err := checkOperands(x, m); err != nil {
		return nil, productErrorf(tagSparseShort, err)
	}

	// Stage 1: column index.
	support := make([]columnSupport, m.NFeatures())
	for _, e := range x.All() {
		cs := &support[e.Col]
		if cs.vals == nil {
			cs.vals = make(map[int]float64)
		}
		if _, ok := cs.vals[e.Row]; !ok {
			cs.rows = append(cs.rows, e.Row)
		}
		cs.vals[e.Row] += e.Value
	}
	for c := range support {
		slices.Sort(support[c].rows)
	}

	// Stage 2: count.
	pairs := m.Pairs()
	derived := 0
	for _, p := range pairs {
		small, large := orderBySize(&support[p.I], &support[p.J])
		for _, r := range small.rows {
			if _, ok := large.vals[r]; ok {
				derived++
			}
		}
	}

	// Stage 3: fill.
	total := x.NNZ() + derived
	rowIdx := make([]int, total)
	colIdx := make([]int, total)
	vals := make([]float64, total)
	w := x.CopyCoords(rowIdx, colIdx, vals)
	for k, p := range pairs {
		col := m.NFeatures() + k
		si, sj := &support[p.I], &support[p.J]
		small, large := orderBySize(si, sj)
		for _, r := range small.rows {
			if _, ok := large.vals[r]; !ok {
				continue
			}
			v := si.vals[r] * sj.vals[r]
			if err := checkPairValue(r, p, v); err != nil {
				return nil, productErrorf(tagSparseShort, err)
			}
			rowIdx[w], colIdx[w], vals[w] = r, col, v
			w++
		}
	}

	out, err := matrix.NewSparseOwned(x.Rows(), m.NOutputFeatures(), rowIdx, colIdx, vals)
	if err != nil {
		return nil, productErrorf(tagSparseShort, err)
	}

	return out, nil
}

// orderBySize returns the column with fewer stored rows first.
func orderBySize(a, b *columnSupport) (small, large *columnSupport) {
	if len(a.rows) <= len(b.rows) {
		return a, b
	}

	return b, a
}
