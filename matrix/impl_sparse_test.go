// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSparse_Validation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		r, c int
		rows []int
		cols []int
		vals []float64
		want error
	}{
		{"bad shape", 0, 2, nil, nil, nil, matrix.ErrInvalidDimensions},
		{"length mismatch", 2, 2, []int{0}, []int{0, 1}, []float64{1}, matrix.ErrDimensionMismatch},
		{"row out of range", 2, 2, []int{2}, []int{0}, []float64{1}, matrix.ErrOutOfRange},
		{"col out of range", 2, 2, []int{0}, []int{-1}, []float64{1}, matrix.ErrOutOfRange},
		{"nan", 2, 2, []int{0}, []int{0}, []float64{math.NaN()}, matrix.ErrNaNInf},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := matrix.NewSparse(tc.r, tc.c, tc.rows, tc.cols, tc.vals)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewSparse_CopiesInput(t *testing.T) {
	t.Parallel()
	rows, cols, vals := []int{0, 1}, []int{1, 0}, []float64{2, 3}
	s, err := matrix.NewSparse(2, 2, rows, cols, vals)
	require.NoError(t, err)
	vals[0] = 100

	assert.Equal(t, 2.0, MustAt(t, s, 0, 1))
	assert.Equal(t, 2, s.NNZ())
	e, err := s.Entry(1)
	require.NoError(t, err)
	assert.Equal(t, matrix.Entry{Row: 1, Col: 0, Value: 3}, e)
	_, err = s.Entry(2)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestSparse_DuplicatesAreSummedOnAssembly(t *testing.T) {
	t.Parallel()
	s, err := matrix.NewSparseFromEntries(2, 2, []matrix.Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 0, Value: 0},
		{Row: 0, Col: 0, Value: 2},
	})
	require.NoError(t, err)
	require.True(t, s.HasDuplicates())

	assert.Equal(t, 3.0, MustAt(t, s, 0, 0))
	d, err := s.ToDense()
	require.NoError(t, err)
	assert.Equal(t, 3.0, MustAt(t, d, 0, 0))

	// Set collapses the coordinate to one entry.
	require.NoError(t, s.Set(0, 0, 5))
	assert.Equal(t, 1, s.NNZ())
	assert.False(t, s.HasDuplicates())
	assert.Equal(t, 5.0, MustAt(t, s, 0, 0))
}

func TestSparse_SetAppendsAndClone(t *testing.T) {
	t.Parallel()
	s, err := matrix.NewSparse(3, 3, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(2, 1, 4))
	require.ErrorIs(t, s.Set(3, 1, 4), matrix.ErrOutOfRange)

	c := s.Clone()
	require.NoError(t, c.Set(2, 1, 9))
	assert.Equal(t, 4.0, MustAt(t, s, 2, 1))
	assert.Equal(t, []matrix.Entry{{Row: 2, Col: 1, Value: 4}}, s.Entries())
	assert.Contains(t, s.String(), "(2, 1) 4")
}
