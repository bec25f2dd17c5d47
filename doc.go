// Package lfp computes longitudinal feature products: the pairwise
// interaction features of subjects observed over discrete time intervals.
//
// What is a feature product?
//
//	Each subject is an n_intervals × n_features matrix. The transform keeps
//	the n base columns and appends one column per unordered feature pair
//	(i, j), i < j, in lexicographic order, giving n + n·(n−1)/2 columns.
//
//	Short exposure:    the pair value at interval t is x[t,i]·x[t,j].
//	Infinite exposure: each feature is stored once, at the interval it
//	                   starts; the pair starts at max(start_i, start_j)
//	                   with value v_i·v_j.
//
// Under the hood, everything is organized under these packages:
//
//	matrix/      — Dense and coordinate-format Sparse matrices
//	combination/ — the column ↔ feature-pair bijection
//	product/     — engines, dispatcher and the parallel FeaturesProduct transformer
//	config/      — YAML + environment configuration
//	store/       — SQLite / PostgreSQL cohort and product persistence
//	cmd/lfp/     — import, transform and mapper commands
//
// Quick example (infinite exposure):
//
//	interval  f0  f1  f2          f0  f1  f2  f0·f1  f0·f2  f1·f2
//	   0       .   1   .    →      .   1   .    .      .      .
//	   1       .   .   .           .   .   .    .      .      .
//	   2       .   .   1           .   .   1    .      .      1
//
//	go get github.com/katalvlaran/lvlath-lfp/product
package lfp
