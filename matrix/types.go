// SPDX-License-Identifier: MIT

// Package matrix: domain types shared by Dense and Sparse storage.
package matrix

// DefaultValidateNaNInf toggles strict finite-value validation on ingestion and Set.
const DefaultValidateNaNInf = true

// Matrix represents a two-dimensional array of float64 values.
// Each method enforces bounds checking and returns clear errors on misuse.
//
// Complexity notes: Rows/Cols are O(1); At/Set are O(1) for Dense and
// O(nnz) for Sparse; Clone is O(storage).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	// The returned Matrix is independent of the original.
	Clone() Matrix
}

// Entry is a single stored (row, col, value) coordinate of a Sparse matrix.
type Entry struct {
	Row   int     // interval index
	Col   int     // feature index
	Value float64 // stored value
}
