// SPDX-License-Identifier: MIT

package combination_test

import (
	"testing"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TooFewFeatures(t *testing.T) {
	t.Parallel()
	for _, n := range []int{-1, 0, 1} {
		_, err := combination.New(n)
		require.ErrorIs(t, err, combination.ErrTooFewFeatures, "n=%d", n)
	}
}

func TestNew_ThreeFeatures(t *testing.T) {
	t.Parallel()
	m, err := combination.New(3)
	require.NoError(t, err)

	assert.Equal(t, map[int]combination.Pair{
		3: {I: 0, J: 1},
		4: {I: 0, J: 2},
		5: {I: 1, J: 2},
	}, m.Mapping())
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 6, m.NOutputFeatures())
	assert.Equal(t, "(1, 2)", m.Pairs()[2].String())
}

// Every n in range: size is C(n,2), columns cover n..n_out-1 exactly once,
// pairs ascend lexicographically and Index inverts Pair.
func TestMap_BijectionProperty(t *testing.T) {
	t.Parallel()
	for n := 2; n <= 40; n++ {
		m, err := combination.New(n)
		require.NoError(t, err)
		require.Equal(t, n*(n-1)/2, m.Len())
		require.Equal(t, n+n*(n-1)/2, m.NOutputFeatures())

		seen := make(map[combination.Pair]bool, m.Len())
		var prev combination.Pair
		for col := n; col < m.NOutputFeatures(); col++ {
			p, ok := m.Pair(col)
			require.True(t, ok)
			require.Less(t, p.I, p.J)
			require.Less(t, p.J, n)
			require.False(t, seen[p], "pair %v assigned twice", p)
			seen[p] = true

			if col > n {
				require.True(t, prev.I < p.I || (prev.I == p.I && prev.J < p.J), "order broken at %d", col)
			}
			prev = p

			idx, ok := m.Index(p.I, p.J)
			require.True(t, ok)
			require.Equal(t, col, idx)
			idx, ok = m.Index(p.J, p.I)
			require.True(t, ok)
			require.Equal(t, col, idx)
		}
	}
}

func TestMap_OutOfRangeLookups(t *testing.T) {
	t.Parallel()
	m, err := combination.New(4)
	require.NoError(t, err)

	for _, col := range []int{-1, 0, 3, 10} {
		_, ok := m.Pair(col)
		assert.False(t, ok, "col=%d", col)
	}
	for _, p := range [][2]int{{1, 1}, {-1, 2}, {0, 4}} {
		_, ok := m.Index(p[0], p[1])
		assert.False(t, ok, "pair=%v", p)
	}
}

func TestMap_DeterministicAndCopiesAreDetached(t *testing.T) {
	t.Parallel()
	a, err := combination.New(6)
	require.NoError(t, err)
	b, err := combination.New(6)
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	mp := a.Mapping()
	mp[6] = combination.Pair{I: 4, J: 5}
	ps := a.Pairs()
	ps[0] = combination.Pair{I: 3, J: 4}

	p, _ := a.Pair(6)
	assert.Equal(t, combination.Pair{I: 0, J: 1}, p)
	assert.True(t, a.Equal(b))

	c, err := combination.New(5)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
