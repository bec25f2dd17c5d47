// SPDX-License-Identifier: MIT

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/katalvlaran/lvlath-lfp/product"
)

var errBadCSV = errors.New("malformed exposure csv")

// maxInferredSubjects bounds subject ids when the cohort size is not given;
// every id below the largest one seen gets a matrix.
const maxInferredSubjects = 1 << 16

// readCohortCSV parses subject,row,col,value records into one matrix per
// subject. Subjects are numbered from 0; a subject index with no records
// becomes an all-zero matrix. With subjects > 0 the cohort has exactly that
// many subjects and larger ids are rejected; with subjects == 0 the size is
// inferred from the largest id, which must stay below maxInferredSubjects.
// An optional header line starting with "subject" is skipped. Repeated
// coordinates are kept for sparse subjects and summed into dense ones.
func readCohortCSV(r io.Reader, intervals, features, subjects int, form product.StorageForm) ([]matrix.Matrix, int, error) {
	limit := subjects
	if limit <= 0 {
		limit = maxInferredSubjects
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var (
		bySubject [][]matrix.Entry
		cells     int
	)
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", errBadCSV, err)
		}
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "subject") {
			continue
		}
		line, _ := cr.FieldPos(0)

		subject, e, err := parseRecord(rec)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: line %d: %w", errBadCSV, line, err)
		}
		if e.Row >= intervals || e.Col >= features {
			return nil, 0, fmt.Errorf("%w: line %d: cell (%d, %d) outside %dx%d",
				errBadCSV, line, e.Row, e.Col, intervals, features)
		}
		if subject >= limit {
			return nil, 0, fmt.Errorf("%w: line %d: subject %d outside [0,%d)", errBadCSV, line, subject, limit)
		}
		for len(bySubject) <= subject {
			bySubject = append(bySubject, nil)
		}
		bySubject[subject] = append(bySubject[subject], e)
		cells++
	}
	if len(bySubject) == 0 {
		return nil, 0, fmt.Errorf("%w: no records", errBadCSV)
	}
	for len(bySubject) < subjects {
		bySubject = append(bySubject, nil)
	}

	out := make([]matrix.Matrix, len(bySubject))
	for i, entries := range bySubject {
		m, err := buildSubject(intervals, features, form, entries)
		if err != nil {
			return nil, 0, fmt.Errorf("subject %d: %w", i, err)
		}
		out[i] = m
	}

	return out, cells, nil
}

func parseRecord(rec []string) (int, matrix.Entry, error) {
	var ints [3]int
	for k := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(rec[k]))
		if err != nil {
			return 0, matrix.Entry{}, err
		}
		if v < 0 {
			return 0, matrix.Entry{}, fmt.Errorf("negative index %d", v)
		}
		ints[k] = v
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
	if err != nil {
		return 0, matrix.Entry{}, err
	}

	return ints[0], matrix.Entry{Row: ints[1], Col: ints[2], Value: value}, nil
}

func buildSubject(intervals, features int, form product.StorageForm, entries []matrix.Entry) (matrix.Matrix, error) {
	if form == product.FormSparse {
		return matrix.NewSparseFromEntries(intervals, features, entries)
	}

	d, err := matrix.NewDense(intervals, features)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		cur, err := d.At(e.Row, e.Col)
		if err != nil {
			return nil, err
		}
		if err := d.Set(e.Row, e.Col, cur+e.Value); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func parseStorage(s string) (product.StorageForm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return product.FormSparse, nil
	case "dense":
		return product.FormDense, nil
	}

	return 0, fmt.Errorf("storage %q: must be sparse or dense", s)
}
