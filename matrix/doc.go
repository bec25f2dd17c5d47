// SPDX-License-Identifier: MIT

// Package matrix provides the two storage forms used for per-subject
// longitudinal exposure data: a row-major Dense buffer and a coordinate
// (COO) Sparse set of (row, col, value) entries.
//
// 🚀 What lives here?
//
//	• Matrix    — the shared interface (Rows, Cols, At, Set, Clone)
//	• Dense     — n_intervals × n_features flat buffer, O(1) bounds-checked access
//	• Sparse    — parallel row/col/value arrays, only stored entries
//	• Entry     — one stored (row, col, value) coordinate
//	• Conversions between the two forms (SparseFromDense, Sparse.ToDense)
//
// ✨ Guarantees:
//   - Public accessors return sentinel errors instead of panicking.
//   - Constructors copy their inputs; a matrix never aliases caller memory.
//   - NaN and ±Inf are rejected on ingestion.
//   - Sparse.ToDense applies the standard assembly rule: values stored at the
//     same coordinate are summed.
//
// Complexity quicksheet:
//   - NewDense: O(r*c); NewSparse: O(nnz); Sparse.At: O(nnz); Dense.At: O(1).
package matrix
