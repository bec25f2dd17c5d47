// SPDX-License-Identifier: MIT

// Package store persists cohorts of subject exposure matrices and their
// feature products in SQLite or PostgreSQL.
//
// Every matrix is stored as coordinate rows (subject, seq, row_idx, col_idx,
// value). Dense subjects keep only their non-zero cells and are rebuilt as
// *matrix.Dense on load; sparse subjects keep every stored entry in order,
// explicit zeros and duplicates included.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	// Registered drivers: "sqlite" and "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/katalvlaran/lvlath-lfp/product"
)

var (
	// ErrCohortNotFound is returned when no cohort (or product set) has the given name.
	ErrCohortNotFound = errors.New("store: cohort not found")

	// ErrInvalidCohort is returned when a cohort fails consistency checks before saving.
	ErrInvalidCohort = errors.New("store: invalid cohort")

	// ErrUnsupportedDriver is returned by Open for drivers other than sqlite and pgx.
	ErrUnsupportedDriver = errors.New("store: unsupported driver")
)

// Cohort is a named batch of subjects sharing one shape and storage form.
type Cohort struct {
	Name       string
	NIntervals int
	NFeatures  int
	Storage    product.StorageForm
	Subjects   []matrix.Matrix
}

// Store wraps a database handle.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to the database and migrates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite":
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case "pgx":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == "sqlite" {
		// One writer; avoids SQLITE_BUSY under concurrent saves.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, logger: slog.Default()}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// WithLogger sets the logger used for save/load events.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	if l != nil {
		s.logger = l
	}

	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cohorts (
		name TEXT PRIMARY KEY,
		n_intervals INTEGER NOT NULL,
		n_features INTEGER NOT NULL,
		n_subjects INTEGER NOT NULL,
		storage TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exposures (
		cohort TEXT NOT NULL,
		subject INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		row_idx INTEGER NOT NULL,
		col_idx INTEGER NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (cohort, subject, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS product_sets (
		cohort TEXT PRIMARY KEY,
		n_intervals INTEGER NOT NULL,
		n_output_features INTEGER NOT NULL,
		n_subjects INTEGER NOT NULL,
		storage TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		cohort TEXT NOT NULL,
		subject INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		row_idx INTEGER NOT NULL,
		col_idx INTEGER NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (cohort, subject, seq)
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// header is the shared shape row of cohorts and product_sets.
type header struct {
	NIntervals int    `db:"n_intervals"`
	NCols      int    `db:"n_cols"`
	NSubjects  int    `db:"n_subjects"`
	Storage    string `db:"storage"`
}

type cell struct {
	Subject int     `db:"subject"`
	Row     int     `db:"row_idx"`
	Col     int     `db:"col_idx"`
	Value   float64 `db:"value"`
}

// SaveCohort writes c, replacing any cohort with the same name and dropping
// the products saved for it.
func (s *Store) SaveCohort(ctx context.Context, c Cohort) error {
	if err := c.validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM cohorts WHERE name = ?"), c.Name); err != nil {
		return err
	}
	// Products computed from the previous exposures are stale.
	for _, table := range []string{"product_sets", "products"} {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE cohort = ?"), c.Name); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO cohorts (name, n_intervals, n_features, n_subjects, storage) VALUES (?, ?, ?, ?, ?)"),
		c.Name, c.NIntervals, c.NFeatures, len(c.Subjects), c.Storage.String(),
	)
	if err != nil {
		return fmt.Errorf("insert cohort %s: %w", c.Name, err)
	}
	n, err := writeCells(ctx, tx, "exposures", c.Name, c.Subjects)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("cohort saved", "cohort", c.Name, "subjects", len(c.Subjects), "cells", n)
	return nil
}

// LoadCohort reads the cohort called name.
func (s *Store) LoadCohort(ctx context.Context, name string) (Cohort, error) {
	var h header
	err := s.db.GetContext(ctx, &h, s.db.Rebind(
		"SELECT n_intervals, n_features AS n_cols, n_subjects, storage FROM cohorts WHERE name = ?"), name)
	if err != nil {
		return Cohort{}, notFound(name, err)
	}
	form, err := parseForm(h.Storage)
	if err != nil {
		return Cohort{}, err
	}
	subjects, err := s.readCells(ctx, "exposures", name, h, form)
	if err != nil {
		return Cohort{}, err
	}

	return Cohort{
		Name:       name,
		NIntervals: h.NIntervals,
		NFeatures:  h.NCols,
		Storage:    form,
		Subjects:   subjects,
	}, nil
}

// SaveProducts writes the transformed subjects of cohort name, replacing any
// previous products. All matrices must share one shape and storage form.
func (s *Store) SaveProducts(ctx context.Context, name string, out []matrix.Matrix) error {
	if len(out) == 0 {
		return fmt.Errorf("%w: no products for %s", ErrInvalidCohort, name)
	}
	form, err := product.FormOf(out[0])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCohort, err)
	}
	if err := checkSubjects(out, out[0].Rows(), out[0].Cols(), form); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM product_sets WHERE cohort = ?"), name); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO product_sets (cohort, n_intervals, n_output_features, n_subjects, storage) VALUES (?, ?, ?, ?, ?)"),
		name, out[0].Rows(), out[0].Cols(), len(out), form.String(),
	)
	if err != nil {
		return fmt.Errorf("insert product set %s: %w", name, err)
	}
	n, err := writeCells(ctx, tx, "products", name, out)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("products saved", "cohort", name, "subjects", len(out), "cells", n)
	return nil
}

// LoadProducts reads the products saved for cohort name.
func (s *Store) LoadProducts(ctx context.Context, name string) ([]matrix.Matrix, error) {
	var h header
	err := s.db.GetContext(ctx, &h, s.db.Rebind(
		"SELECT n_intervals, n_output_features AS n_cols, n_subjects, storage FROM product_sets WHERE cohort = ?"), name)
	if err != nil {
		return nil, notFound(name, err)
	}
	form, err := parseForm(h.Storage)
	if err != nil {
		return nil, err
	}

	return s.readCells(ctx, "products", name, h, form)
}

// Cohorts lists saved cohort names in ascending order.
func (s *Store) Cohorts(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, "SELECT name FROM cohorts ORDER BY name")
	return names, err
}

// writeCells replaces the rows of table belonging to name with the cells of
// subjects and returns the number of rows written.
func writeCells(ctx context.Context, tx *sqlx.Tx, table, name string, subjects []matrix.Matrix) (int, error) {
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE cohort = ?"), name); err != nil {
		return 0, err
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		"INSERT INTO "+table+" (cohort, subject, seq, row_idx, col_idx, value) VALUES (?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	written := 0
	for subject, m := range subjects {
		for seq, e := range cellsOf(m) {
			if _, err := stmt.ExecContext(ctx, name, subject, seq, e.Row, e.Col, e.Value); err != nil {
				return written, fmt.Errorf("insert %s subject %d: %w", table, subject, err)
			}
			written++
		}
	}

	return written, nil
}

func (s *Store) readCells(ctx context.Context, table, name string, h header, form product.StorageForm) ([]matrix.Matrix, error) {
	var cells []cell
	err := s.db.SelectContext(ctx, &cells, s.db.Rebind(
		"SELECT subject, row_idx, col_idx, value FROM "+table+" WHERE cohort = ? ORDER BY subject, seq"), name)
	if err != nil {
		return nil, err
	}

	bySubject := make([][]matrix.Entry, h.NSubjects)
	for _, c := range cells {
		if c.Subject < 0 || c.Subject >= h.NSubjects {
			return nil, fmt.Errorf("%s %s: subject %d outside [0,%d)", table, name, c.Subject, h.NSubjects)
		}
		bySubject[c.Subject] = append(bySubject[c.Subject], matrix.Entry{Row: c.Row, Col: c.Col, Value: c.Value})
	}

	out := make([]matrix.Matrix, h.NSubjects)
	for i, entries := range bySubject {
		m, err := build(h.NIntervals, h.NCols, form, entries)
		if err != nil {
			return nil, fmt.Errorf("%s %s subject %d: %w", table, name, i, err)
		}
		out[i] = m
	}

	s.logger.Debug("loaded", "table", table, "cohort", name, "subjects", h.NSubjects, "cells", len(cells))
	return out, nil
}

func (c Cohort) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCohort)
	}
	if c.NIntervals < 1 || c.NFeatures < 1 {
		return fmt.Errorf("%w: shape %dx%d", ErrInvalidCohort, c.NIntervals, c.NFeatures)
	}
	if c.Storage != product.FormDense && c.Storage != product.FormSparse {
		return fmt.Errorf("%w: storage %v", ErrInvalidCohort, c.Storage)
	}

	return checkSubjects(c.Subjects, c.NIntervals, c.NFeatures, c.Storage)
}

func checkSubjects(subjects []matrix.Matrix, rows, cols int, form product.StorageForm) error {
	for i, m := range subjects {
		f, err := product.FormOf(m)
		if err != nil {
			return fmt.Errorf("%w: subject %d: %w", ErrInvalidCohort, i, err)
		}
		if f != form {
			return fmt.Errorf("%w: subject %d is %v, want %v", ErrInvalidCohort, i, f, form)
		}
		if m.Rows() != rows || m.Cols() != cols {
			return fmt.Errorf("%w: subject %d is %dx%d, want %dx%d",
				ErrInvalidCohort, i, m.Rows(), m.Cols(), rows, cols)
		}
	}

	return nil
}

// cellsOf lists the cells to persist: every stored entry of a sparse matrix,
// the non-zero cells of a dense one.
func cellsOf(m matrix.Matrix) []matrix.Entry {
	switch t := m.(type) {
	case *matrix.Sparse:
		return t.Entries()
	case *matrix.Dense:
		var out []matrix.Entry
		for i := 0; i < t.Rows(); i++ {
			row, _ := t.Row(i)
			for j, v := range row {
				if v != 0 {
					out = append(out, matrix.Entry{Row: i, Col: j, Value: v})
				}
			}
		}
		return out
	}

	return nil
}

func build(rows, cols int, form product.StorageForm, entries []matrix.Entry) (matrix.Matrix, error) {
	if form == product.FormSparse {
		return matrix.NewSparseFromEntries(rows, cols, entries)
	}

	d, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := d.Set(e.Row, e.Col, e.Value); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func parseForm(s string) (product.StorageForm, error) {
	switch s {
	case product.FormDense.String():
		return product.FormDense, nil
	case product.FormSparse.String():
		return product.FormSparse, nil
	}

	return 0, fmt.Errorf("store: unknown storage form %q", s)
}

func notFound(name string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCohortNotFound, name)
	}

	return err
}
