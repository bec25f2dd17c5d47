// SPDX-License-Identifier: MIT

// Package product augments per-subject longitudinal exposure matrices with
// pairwise interaction ("product") features.
//
// 🚀 What does it compute?
//
//	Each subject is an n_intervals × n_features matrix. The output keeps the
//	n_features base columns verbatim and appends one column per unordered
//	pair (i, j), laid out by combination.Map, for n_features + C(n_features, 2)
//	columns in total.
//
// ✨ Exposure semantics:
//   - Short    — cells are independent; the pair column is the per-row product.
//     Works on dense (DenseShortProduct) and sparse (SparseShortProduct) input.
//   - Infinite — a feature starts at its single stored entry and persists to the
//     end of the window; the pair starts at max(start_i, start_j) and is stored
//     as one entry (SparseInfiniteProduct). Sparse input only.
//
// ⚙️ Usage:
//
//	fp, err := product.New(
//	  product.WithExposureType(product.Infinite),
//	  product.WithParallelism(product.AllCPUs),
//	)
//	out, err := fp.FitTransform(ctx, subjects) // []matrix.Matrix, input order
//	m, _ := fp.Mapper()                        // column → pair
//
// Concurrency:
//
//	Every engine is a pure function of (subject, map). Transform fans the
//	selected engine out over an errgroup worker pool, writes each result into
//	its input slot, and aborts on the first error.
//
// Errors are classified by ErrConfiguration, ErrDataIntegrity and ErrUsage.
package product
