// SPDX-License-Identifier: MIT

// Package combination maps interaction-feature columns to the unordered pairs
// of base features they represent.
//
// 🚀 What is a combination map?
//
//	For n base features, every unordered pair (i, j) with 0 ≤ i < j < n gets
//	one output column. Pairs are enumerated in ascending lexicographic order
//	and the k-th pair is assigned column n + k, so the augmented matrix has
//	n + n·(n−1)/2 columns:
//
//	  n = 3:   3 → (0,1)   4 → (0,2)   5 → (1,2)
//
// ✨ Properties:
//   - Deterministic and total: the same n always yields the same map.
//   - Immutable: built once, then shared read-only across goroutines.
//   - O(1) lookups in both directions (Pair by column, Index by pair).
//
// ⚙️ Usage:
//
//	m, err := combination.New(3)
//	if err != nil {
//	  // n < 2: ErrTooFewFeatures
//	}
//	col, _ := m.Index(0, 2) // 4
//	p, _ := m.Pair(5)       // {I:1 J:2}
package combination
