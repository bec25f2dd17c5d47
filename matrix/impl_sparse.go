// SPDX-License-Identifier: MIT

// Package matrix - Sparse coordinate (COO) storage.
//
// Purpose:
//   - Hold only stored entries as three parallel arrays (row, col, value).
//   - Keep coordinate order exactly as supplied; no implicit sorting.
//   - Follow the standard assembly rule when materializing: values stored
//     at identical coordinates are summed (At, ToDense).
//
// Complexity quicksheet:
//   - NewSparse: O(nnz); At/Set: O(nnz); ToDense: O(r*c + nnz); Clone: O(nnz).

package matrix

import (
	"fmt"
	"iter"
	"strings"
)

// sparseErrorf wraps an error with a uniform Sparse context.
func sparseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Sparse.%s(%d,%d): %w", method, row, col, err)
}

// Sparse is an r×c matrix in coordinate form.
// Invariant: len(row) == len(col) == len(val); every (row[k], col[k]) is in bounds.
type Sparse struct {
	r, c int
	row  []int
	col  []int
	val  []float64
}

var (
	_ Matrix       = (*Sparse)(nil)
	_ fmt.Stringer = (*Sparse)(nil)
)

// NewSparse builds an r×c coordinate matrix from parallel arrays.
// MAIN DESCRIPTION:
//   - Validates shape, equal array lengths, coordinate bounds and finiteness.
//   - Copies the arrays; the caller keeps ownership of its slices.
//
// Errors:
//   - ErrInvalidDimensions for rows<=0 or cols<=0.
//   - ErrDimensionMismatch when the three arrays differ in length.
//   - ErrOutOfRange for a coordinate outside the shape.
//   - ErrNaNInf for a non-finite value.
//
// Complexity:
//   - Time O(nnz), Space O(nnz).
func NewSparse(rows, cols int, rowIdx, colIdx []int, vals []float64) (*Sparse, error) {
	r := make([]int, len(rowIdx))
	copy(r, rowIdx)
	c := make([]int, len(colIdx))
	copy(c, colIdx)
	v := make([]float64, len(vals))
	copy(v, vals)

	return NewSparseOwned(rows, cols, r, c, v)
}

// NewSparseOwned is NewSparse without the defensive copy: ownership of the
// three slices moves to the returned matrix and the caller must not touch
// them afterwards. Used by producers that already allocated exact-size arrays.
func NewSparseOwned(rows, cols int, rowIdx, colIdx []int, vals []float64) (*Sparse, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(rowIdx) != len(colIdx) || len(colIdx) != len(vals) {
		return nil, sparseErrorf("New", len(rowIdx), len(colIdx), ErrDimensionMismatch)
	}
	for k := range rowIdx {
		if err := validateBounds(rows, cols, rowIdx[k], colIdx[k]); err != nil {
			return nil, sparseErrorf("New", rowIdx[k], colIdx[k], err)
		}
		if err := validateFinite(vals[k]); err != nil {
			return nil, sparseErrorf("New", rowIdx[k], colIdx[k], err)
		}
	}

	return &Sparse{r: rows, c: cols, row: rowIdx, col: colIdx, val: vals}, nil
}

// NewSparseFromEntries builds an r×c coordinate matrix from a list of entries,
// preserving their order.
func NewSparseFromEntries(rows, cols int, entries []Entry) (*Sparse, error) {
	r := make([]int, len(entries))
	c := make([]int, len(entries))
	v := make([]float64, len(entries))
	for k, e := range entries {
		r[k], c[k], v[k] = e.Row, e.Col, e.Value
	}

	return NewSparseOwned(rows, cols, r, c, v)
}

// Rows returns the number of rows in the matrix.
func (m *Sparse) Rows() int { return m.r }

// Cols returns the number of columns in the matrix.
func (m *Sparse) Cols() int { return m.c }

// NNZ returns the number of stored entries (explicit zeros and duplicates included).
func (m *Sparse) NNZ() int { return len(m.val) }

// Entry returns the k-th stored entry in storage order.
func (m *Sparse) Entry(k int) (Entry, error) {
	if k < 0 || k >= len(m.val) {
		return Entry{}, sparseErrorf("Entry", k, 0, ErrOutOfRange)
	}

	return Entry{Row: m.row[k], Col: m.col[k], Value: m.val[k]}, nil
}

// Entries returns a copy of all stored entries in storage order.
func (m *Sparse) Entries() []Entry {
	out := make([]Entry, len(m.val))
	for k := range m.val {
		out[k] = Entry{Row: m.row[k], Col: m.col[k], Value: m.val[k]}
	}

	return out
}

// Coords returns copies of the three coordinate arrays.
func (m *Sparse) Coords() (rowIdx, colIdx []int, vals []float64) {
	rowIdx = append([]int(nil), m.row...)
	colIdx = append([]int(nil), m.col...)
	vals = append([]float64(nil), m.val...)

	return rowIdx, colIdx, vals
}

// All iterates stored entries in storage order without copying the arrays.
func (m *Sparse) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for k := range m.val {
			if !yield(k, Entry{Row: m.row[k], Col: m.col[k], Value: m.val[k]}) {
				return
			}
		}
	}
}

// CopyCoords copies the stored coordinates into the given buffers and returns
// the number of entries copied, which is min(NNZ, len of the shortest buffer).
func (m *Sparse) CopyCoords(rowIdx, colIdx []int, vals []float64) int {
	n := min(len(m.val), len(rowIdx), len(colIdx), len(vals))
	copy(rowIdx, m.row[:n])
	copy(colIdx, m.col[:n])
	copy(vals, m.val[:n])

	return n
}

// At returns the value at (row, col): the sum of all entries stored there,
// or 0 when nothing is stored.
// Complexity: O(nnz).
func (m *Sparse) At(row, col int) (float64, error) {
	if err := validateBounds(m.r, m.c, row, col); err != nil {
		return 0, sparseErrorf("At", row, col, err)
	}
	var sum float64
	for k := range m.val {
		if m.row[k] == row && m.col[k] == col {
			sum += m.val[k]
		}
	}

	return sum, nil
}

// Set stores v at (row, col). Any entries already stored at that coordinate
// are collapsed into a single entry holding v (kept at the first position).
// Complexity: O(nnz).
func (m *Sparse) Set(row, col int, v float64) error {
	if err := validateBounds(m.r, m.c, row, col); err != nil {
		return sparseErrorf("Set", row, col, err)
	}
	if err := validateFinite(v); err != nil {
		return sparseErrorf("Set", row, col, err)
	}
	found := false
	w := 0
	for k := range m.val {
		if m.row[k] == row && m.col[k] == col {
			if found {
				continue // drop duplicate
			}
			found = true
			m.val[k] = v
		}
		m.row[w], m.col[w], m.val[w] = m.row[k], m.col[k], m.val[k]
		w++
	}
	m.row, m.col, m.val = m.row[:w], m.col[:w], m.val[:w]
	if !found {
		m.row = append(m.row, row)
		m.col = append(m.col, col)
		m.val = append(m.val, v)
	}

	return nil
}

// HasDuplicates reports whether two stored entries share a coordinate.
// Complexity: O(nnz) time and space.
func (m *Sparse) HasDuplicates() bool {
	seen := make(map[[2]int]struct{}, len(m.val))
	for k := range m.val {
		key := [2]int{m.row[k], m.col[k]}
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}

	return false
}

// ToDense materializes the matrix, summing values at identical coordinates.
// Complexity: O(r*c + nnz).
func (m *Sparse) ToDense() (*Dense, error) {
	out, err := NewDense(m.r, m.c)
	if err != nil {
		return nil, err
	}
	for k := range m.val {
		out.data[m.row[k]*m.c+m.col[k]] += m.val[k]
	}

	return out, nil
}

// Clone returns a deep copy of the Sparse matrix.
func (m *Sparse) Clone() Matrix {
	r, c, v := m.Coords()

	return &Sparse{r: m.r, c: m.c, row: r, col: c, val: v}
}

// String lists stored entries in storage order, one per line.
func (m *Sparse) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sparse %dx%d nnz=%d\n", m.r, m.c, len(m.val))
	for k := range m.val {
		fmt.Fprintf(&sb, "  (%d, %d) %g\n", m.row[k], m.col[k], m.val[k])
	}

	return sb.String()
}
