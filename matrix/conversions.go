// SPDX-License-Identifier: MIT

package matrix

// SparseFromDense returns the coordinate form of d, storing every non-zero
// cell in row-major order.
// Complexity: O(r*c).
func SparseFromDense(d *Dense) (*Sparse, error) {
	if d == nil {
		return nil, validatorErrorf("SparseFromDense", ErrNilMatrix)
	}
	var (
		rowIdx []int
		colIdx []int
		vals   []float64
	)
	for i := 0; i < d.r; i++ {
		base := i * d.c
		for j := 0; j < d.c; j++ {
			if v := d.data[base+j]; v != 0 {
				rowIdx = append(rowIdx, i)
				colIdx = append(colIdx, j)
				vals = append(vals, v)
			}
		}
	}

	return NewSparseOwned(d.r, d.c, rowIdx, colIdx, vals)
}

// Equal reports whether a and b have the same shape and the same value at
// every cell, independent of storage form. Sparse operands are compared
// after duplicate summation.
// Complexity: O(r*c) plus conversion cost for Sparse operands.
func Equal(a, b Matrix) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, err
	}
	if err := ValidateNotNil(b); err != nil {
		return false, err
	}
	if ValidateSameShape(a, b) != nil {
		return false, nil
	}
	da, err := asDense(a)
	if err != nil {
		return false, err
	}
	db, err := asDense(b)
	if err != nil {
		return false, err
	}
	for k := range da.data {
		if da.data[k] != db.data[k] {
			return false, nil
		}
	}

	return true, nil
}

// asDense returns m as *Dense, converting through At for foreign implementations.
func asDense(m Matrix) (*Dense, error) {
	switch v := m.(type) {
	case *Dense:
		return v, nil
	case *Sparse:
		return v.ToDense()
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, err
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}
