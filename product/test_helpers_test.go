// SPDX-License-Identifier: MIT

package product_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/stretchr/testify/require"
)

// denseRows builds a Dense subject or fails the test.
func denseRows(t testing.TB, rows [][]float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return d
}

// sparseRows builds a Sparse subject storing the non-zero cells of rows.
func sparseRows(t testing.TB, rows [][]float64) *matrix.Sparse {
	t.Helper()
	s, err := matrix.SparseFromDense(denseRows(t, rows))
	require.NoError(t, err)

	return s
}

// toRows materializes any Matrix as a slice of rows.
func toRows(t testing.TB, m matrix.Matrix) [][]float64 {
	t.Helper()
	out := make([][]float64, m.Rows())
	for i := range out {
		out[i] = make([]float64, m.Cols())
		for j := range out[i] {
			v, err := m.At(i, j)
			require.NoError(t, err)
			out[i][j] = v
		}
	}

	return out
}

// mustMap builds a combination map or fails the test.
func mustMap(t testing.TB, n int) *combination.Map {
	t.Helper()
	m, err := combination.New(n)
	require.NoError(t, err)

	return m
}

// randomInfinite returns a sparse subject with at most one start per column;
// each column starts with probability 1/2 at a random interval.
func randomInfinite(t testing.TB, rng *rand.Rand, rows, cols int) *matrix.Sparse {
	t.Helper()
	var entries []matrix.Entry
	for c := 0; c < cols; c++ {
		if rng.Intn(2) == 0 {
			continue
		}
		entries = append(entries, matrix.Entry{Row: rng.Intn(rows), Col: c, Value: float64(1 + rng.Intn(3))})
	}
	rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	s, err := matrix.NewSparseFromEntries(rows, cols, entries)
	require.NoError(t, err)

	return s
}

// randomShortRows returns a dense grid with roughly 30% non-zero cells.
func randomShortRows(rng *rand.Rand, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			if rng.Float64() < 0.3 {
				out[i][j] = float64(rng.Intn(5) - 2)
			}
		}
	}

	return out
}
