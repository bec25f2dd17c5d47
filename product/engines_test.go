// SPDX-License-Identifier: MIT

package product_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/katalvlaran/lvlath-lfp/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SparseInfiniteProduct ---------------------------------------------------

// Worked example with n_intervals=3, n_features=3 and map 3→(0,1), 4→(0,2), 5→(1,2).
// Persistence to the end of the window is inferred from this example; it is
// pinned here as a regression.
func TestSparseInfiniteProduct_WorkedExample(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 3)
	tests := []struct {
		name string
		in   [][]float64
		want [][]float64
	}{
		{
			name: "subject A",
			in:   [][]float64{{0, 1, 0}, {0, 0, 0}, {0, 0, 1}},
			want: [][]float64{{0, 1, 0, 0, 0, 0}, {0, 0, 0, 0, 0, 0}, {0, 0, 1, 0, 0, 1}},
		},
		{
			name: "subject B",
			in:   [][]float64{{1, 1, 0}, {0, 0, 1}, {0, 0, 0}},
			want: [][]float64{{1, 1, 0, 1, 0, 0}, {0, 0, 1, 0, 1, 1}, {0, 0, 0, 0, 0, 0}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := product.SparseInfiniteProduct(sparseRows(t, tc.in), m)
			require.NoError(t, err)
			assert.Equal(t, tc.want, toRows(t, out))
		})
	}
}

func TestSparseInfiniteProduct_ExactSizeAndPassThrough(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 5)
	// Columns 0, 2, 4 start; 1 and 3 never do.
	in, err := matrix.NewSparseFromEntries(4, 5, []matrix.Entry{
		{Row: 3, Col: 4, Value: 2},
		{Row: 1, Col: 0, Value: 3},
		{Row: 2, Col: 2, Value: 5},
	})
	require.NoError(t, err)

	out, err := product.SparseInfiniteProduct(in, m)
	require.NoError(t, err)

	// nnz + C(3,2), never n_output * nnz.
	require.Equal(t, 3+3, out.NNZ())
	assert.Equal(t, 4, out.Rows())
	assert.Equal(t, m.NOutputFeatures(), out.Cols())
	assert.False(t, out.HasDuplicates())

	entries := out.Entries()
	assert.Equal(t, in.Entries(), entries[:3], "pass-through first, unchanged and in order")

	c02, _ := m.Index(0, 2)
	c04, _ := m.Index(0, 4)
	c24, _ := m.Index(2, 4)
	assert.Equal(t, []matrix.Entry{
		{Row: 2, Col: c02, Value: 15},
		{Row: 3, Col: c04, Value: 6},
		{Row: 3, Col: c24, Value: 10},
	}, entries[3:])
}

// A legitimate (0,0) start must come out untouched: no zero-filled slot may
// alias it and be summed into it.
func TestSparseInfiniteProduct_OriginEntryIsNotCorrupted(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 4)
	in, err := matrix.NewSparseFromEntries(5, 4, []matrix.Entry{
		{Row: 0, Col: 0, Value: 7},
		{Row: 4, Col: 3, Value: 1},
	})
	require.NoError(t, err)

	out, err := product.SparseInfiniteProduct(in, m)
	require.NoError(t, err)

	require.Equal(t, 3, out.NNZ())
	v, err := out.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	c03, _ := m.Index(0, 3)
	v, err = out.At(4, c03)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	for _, e := range out.Entries() {
		if e.Row == 0 && e.Col == 0 {
			assert.Equal(t, 7.0, e.Value)
		}
	}
}

func TestSparseInfiniteProduct_DuplicateStart(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 3)
	in, err := matrix.NewSparseFromEntries(3, 3, []matrix.Entry{
		{Row: 0, Col: 1, Value: 1},
		{Row: 2, Col: 1, Value: 1},
	})
	require.NoError(t, err)

	_, err = product.SparseInfiniteProduct(in, m)
	require.ErrorIs(t, err, product.ErrDuplicateStart)
	require.ErrorIs(t, err, product.ErrDataIntegrity)
	assert.Contains(t, err.Error(), "column 1")
}

func TestSparseInfiniteProduct_EmptyAndSingleStart(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 3)

	empty, err := matrix.NewSparse(2, 3, nil, nil, nil)
	require.NoError(t, err)
	out, err := product.SparseInfiniteProduct(empty, m)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NNZ())
	assert.Equal(t, 6, out.Cols())

	single := sparseRows(t, [][]float64{{0, 0, 0}, {0, 4, 0}})
	out, err = product.SparseInfiniteProduct(single, m)
	require.NoError(t, err)
	assert.Equal(t, single.Entries(), out.Entries())
}

// A stored zero still marks the feature as started.
func TestSparseInfiniteProduct_ExplicitZeroStarts(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 2)
	in, err := matrix.NewSparseFromEntries(3, 2, []matrix.Entry{
		{Row: 1, Col: 0, Value: 0},
		{Row: 2, Col: 1, Value: 5},
	})
	require.NoError(t, err)

	out, err := product.SparseInfiniteProduct(in, m)
	require.NoError(t, err)
	require.Equal(t, 3, out.NNZ())
	assert.Equal(t, matrix.Entry{Row: 2, Col: 2, Value: 0}, out.Entries()[2])
}

// Reference: expand every start to the end of the window, then the pair
// column holds v_i*v_j at the first row where both features are active.
func TestSparseInfiniteProduct_MatchesPersistenceReference(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	const rows, cols = 9, 7
	m := mustMap(t, cols)

	for trial := 0; trial < 200; trial++ {
		in := randomInfinite(t, rng, rows, cols)
		out, err := product.SparseInfiniteProduct(in, m)
		require.NoError(t, err)
		require.False(t, out.HasDuplicates())

		base := toRows(t, in)
		want := make([][]float64, rows)
		for r := range want {
			want[r] = make([]float64, m.NOutputFeatures())
			copy(want[r], base[r])
		}
		active := func(r, c int) (float64, bool) {
			for s := 0; s <= r; s++ {
				if base[s][c] != 0 {
					return base[s][c], true
				}
			}
			return 0, false
		}
		for _, p := range m.Pairs() {
			col, _ := m.Index(p.I, p.J)
			for r := 0; r < rows; r++ {
				vi, okI := active(r, p.I)
				vj, okJ := active(r, p.J)
				if okI && okJ {
					want[r][col] = vi * vj
					break
				}
			}
		}
		require.Equal(t, want, toRows(t, out), "trial %d", trial)
	}
}

func TestEngines_ShapeMismatchWithMap(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 4)
	s := sparseRows(t, [][]float64{{1, 0, 1}})
	d := denseRows(t, [][]float64{{1, 0, 1}})

	_, err := product.SparseInfiniteProduct(s, m)
	assert.ErrorIs(t, err, product.ErrShapeMismatch)
	_, err = product.SparseShortProduct(s, m)
	assert.ErrorIs(t, err, product.ErrShapeMismatch)
	_, err = product.DenseShortProduct(d, m)
	assert.ErrorIs(t, err, product.ErrShapeMismatch)

	_, err = product.DenseShortProduct(nil, m)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
	_, err = product.SparseShortProduct(s, nil)
	assert.ErrorIs(t, err, product.ErrConfiguration)
}

// --- DenseShortProduct -------------------------------------------------------

func TestDenseShortProduct_WorkedExample(t *testing.T) {
	t.Parallel()
	out, err := product.DenseShortProduct(denseRows(t, [][]float64{{2, 3, 0}}), mustMap(t, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 3, 0, 6, 0, 0}}, toRows(t, out))
}

func TestDenseShortProduct_RowsAreIndependent(t *testing.T) {
	t.Parallel()
	in := [][]float64{
		{1, 2, 3},
		{0, 4, 5},
		{-1, 1, 0},
	}
	out, err := product.DenseShortProduct(denseRows(t, in), mustMap(t, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{1, 2, 3, 2, 3, 6},
		{0, 4, 5, 0, 0, 20},
		{-1, 1, 0, -1, 0, 0},
	}, toRows(t, out))
}

// --- SparseShortProduct ------------------------------------------------------

func TestSparseShortProduct_IntersectionOfSupports(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 3)
	in := sparseRows(t, [][]float64{
		{2, 3, 0},
		{1, 0, 4},
		{5, 6, 7},
	})
	out, err := product.SparseShortProduct(in, m)
	require.NoError(t, err)

	// (0,1): rows 0,2; (0,2): rows 1,2; (1,2): row 2.
	assert.Equal(t, in.NNZ()+5, out.NNZ())
	assert.False(t, out.HasDuplicates())
	assert.Equal(t, in.Entries(), out.Entries()[:in.NNZ()])
	assert.Equal(t, [][]float64{
		{2, 3, 0, 6, 0, 0},
		{1, 0, 4, 0, 4, 0},
		{5, 6, 7, 30, 35, 42},
	}, toRows(t, out))
}

func TestSparseShortProduct_SumsDuplicateCoordinates(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 2)
	in, err := matrix.NewSparseFromEntries(1, 2, []matrix.Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 1, Value: 3},
		{Row: 0, Col: 0, Value: 1},
	})
	require.NoError(t, err)

	out, err := product.SparseShortProduct(in, m)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 3, 6}}, toRows(t, out))
}

func TestShortEngines_SparseAgreesWithDense(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	const rows, cols = 12, 6
	m := mustMap(t, cols)
	for trial := 0; trial < 100; trial++ {
		grid := randomShortRows(rng, rows, cols)
		d, err := product.DenseShortProduct(denseRows(t, grid), m)
		require.NoError(t, err)
		s, err := product.SparseShortProduct(sparseRows(t, grid), m)
		require.NoError(t, err)

		eq, err := matrix.Equal(d, s)
		require.NoError(t, err)
		require.True(t, eq, "trial %d", trial)
	}
}

// Finite inputs whose pair product leaves float64 range are data errors,
// reported with the offending pair.
func TestEngines_PairProductOverflow(t *testing.T) {
	t.Parallel()
	m := mustMap(t, 3)
	rows := [][]float64{{1, 0, 0}, {0, 1e200, 1e200}}

	_, errDense := product.DenseShortProduct(denseRows(t, rows), m)
	_, errShort := product.SparseShortProduct(sparseRows(t, rows), m)

	inf, err := matrix.NewSparseFromEntries(2, 3, []matrix.Entry{
		{Row: 0, Col: 1, Value: -1e200},
		{Row: 1, Col: 2, Value: 1e200},
	})
	require.NoError(t, err)
	_, errInfinite := product.SparseInfiniteProduct(inf, m)

	for name, err := range map[string]error{"dense short": errDense, "sparse short": errShort, "sparse infinite": errInfinite} {
		require.ErrorIs(t, err, product.ErrProductOverflow, name)
		require.ErrorIs(t, err, product.ErrDataIntegrity, name)
		require.ErrorIs(t, err, matrix.ErrNaNInf, name)
		assert.Contains(t, err.Error(), "row 1 pair (1, 2)", name)
		assert.Equal(t, "data_integrity", product.ErrorKind(err), name)
	}
}
