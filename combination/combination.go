// SPDX-License-Identifier: MIT

package combination

import (
	"errors"
	"fmt"
)

// ErrTooFewFeatures indicates that fewer than two base features were supplied.
var ErrTooFewFeatures = errors.New("combination: at least two features are required")

// minFeatures is the smallest feature count that yields at least one pair.
const minFeatures = 2

// Pair is an unordered pair of base feature indices stored with I < J.
type Pair struct {
	I int
	J int
}

// String renders the pair as "(i, j)".
func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.I, p.J)
}

// Map is the immutable bijection between output columns n..n+C(n,2)-1 and
// unordered feature pairs. The zero value is not usable; build with New.
type Map struct {
	n     int    // number of base features
	pairs []Pair // pairs[k] is assigned to column n+k
}

// New builds the combination map for n base features.
// MAIN DESCRIPTION:
//   - Enumerate all (i, j), 0 ≤ i < j < n, in ascending lexicographic order.
//   - Assign column n+k to the k-th pair.
//
// Errors:
//   - ErrTooFewFeatures when n < 2.
//
// Complexity:
//   - Time O(n²), Space O(n²).
func New(n int) (*Map, error) {
	if n < minFeatures {
		return nil, fmt.Errorf("combination.New(%d): %w", n, ErrTooFewFeatures)
	}
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}

	return &Map{n: n, pairs: pairs}, nil
}

// NFeatures returns the number of base features.
func (m *Map) NFeatures() int { return m.n }

// Len returns the number of pairs, n·(n−1)/2.
func (m *Map) Len() int { return len(m.pairs) }

// NOutputFeatures returns n + n·(n−1)/2.
func (m *Map) NOutputFeatures() int { return m.n + len(m.pairs) }

// Pair returns the feature pair assigned to output column index.
// ok is false when index is not an interaction column.
func (m *Map) Pair(index int) (p Pair, ok bool) {
	k := index - m.n
	if k < 0 || k >= len(m.pairs) {
		return Pair{}, false
	}

	return m.pairs[k], true
}

// Index returns the output column assigned to the pair {i, j}; argument
// order does not matter. ok is false for i == j or out-of-range features.
//
// The k-th lexicographic pair satisfies k = i·(2n−i−1)/2 + (j−i−1).
// Complexity: O(1).
func (m *Map) Index(i, j int) (index int, ok bool) {
	if i > j {
		i, j = j, i
	}
	if i < 0 || j >= m.n || i == j {
		return 0, false
	}

	return m.n + i*(2*m.n-i-1)/2 + (j - i - 1), true
}

// Pairs returns a copy of all pairs in column order.
func (m *Map) Pairs() []Pair {
	return append([]Pair(nil), m.pairs...)
}

// Mapping returns a fresh column → pair association. Mutating the result
// does not affect m.
func (m *Map) Mapping() map[int]Pair {
	out := make(map[int]Pair, len(m.pairs))
	for k, p := range m.pairs {
		out[m.n+k] = p
	}

	return out
}

// Equal reports whether two maps describe the same bijection.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.n != other.n || len(m.pairs) != len(other.pairs) {
		return false
	}
	for k := range m.pairs {
		if m.pairs[k] != other.pairs[k] {
			return false
		}
	}

	return true
}
