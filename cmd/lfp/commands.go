// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/katalvlaran/lvlath-lfp/product"
	"github.com/katalvlaran/lvlath-lfp/store"
)

type importOptions struct {
	cohort    string
	intervals int
	features  int
	subjects  int
	storage   string
	file      string
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Store.Driver, a.cfg.Store.DSN)
	if err != nil {
		return nil, err
	}

	return st.WithLogger(a.logger), nil
}

func (a *app) runImport(cmd *cobra.Command, o importOptions) error {
	form, err := parseStorage(o.storage)
	if err != nil {
		return err
	}
	if o.subjects < 0 {
		return fmt.Errorf("subjects %d: must be positive, or 0 to infer", o.subjects)
	}

	var in io.Reader = cmd.InOrStdin()
	if o.file != "-" {
		f, err := os.Open(o.file)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		in = f
	}

	subjects, cells, err := readCohortCSV(in, o.intervals, o.features, o.subjects, form)
	if err != nil {
		return err
	}
	a.logger.Debug("Parsed exposures", "cohort", o.cohort, "subjects", len(subjects), "cells", cells)

	ctx := cmd.Context()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	err = st.SaveCohort(ctx, store.Cohort{
		Name:       o.cohort,
		NIntervals: o.intervals,
		NFeatures:  o.features,
		Storage:    form,
		Subjects:   subjects,
	})
	if err != nil {
		return fmt.Errorf("save cohort: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %s: %s subjects, %s cells, %dx%d %s\n",
		o.cohort, humanize.Comma(int64(len(subjects))), humanize.Comma(int64(cells)),
		o.intervals, o.features, form)
	return nil
}

func (a *app) runTransform(cmd *cobra.Command, cohort string) error {
	ctx := cmd.Context()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.LoadCohort(ctx, cohort)
	if err != nil {
		return err
	}

	opts, err := a.cfg.ProductOptions(a.logger)
	if err != nil {
		return err
	}
	fp, err := product.New(opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := fp.FitTransform(ctx, c.Subjects)
	if err != nil {
		return fmt.Errorf("transform %s: %w", cohort, err)
	}
	elapsed := time.Since(start)

	if err := st.SaveProducts(ctx, cohort, out); err != nil {
		return fmt.Errorf("save products: %w", err)
	}

	strategy, _ := fp.Strategy()
	nOut, _ := fp.NOutputFeatures()
	a.logger.Info("Transformed cohort", "cohort", cohort, "strategy", strategy, "elapsed", elapsed)
	fmt.Fprintf(cmd.OutOrStdout(), "transformed %s: %s subjects, %d -> %s features, %s stored entries (%s)\n",
		cohort, humanize.Comma(int64(len(out))), c.NFeatures, humanize.Comma(int64(nOut)),
		humanize.Comma(storedEntries(out)), strategy)
	return nil
}

func printMapper(w io.Writer, features int) error {
	m, err := combination.New(features)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tfeatures")
	for i := 0; i < m.NFeatures(); i++ {
		fmt.Fprintf(tw, "%d\t%d\n", i, i)
	}
	for k, p := range m.Pairs() {
		fmt.Fprintf(tw, "%d\t%s\n", m.NFeatures()+k, p)
	}

	return tw.Flush()
}

func storedEntries(ms []matrix.Matrix) int64 {
	var n int64
	for _, m := range ms {
		switch t := m.(type) {
		case *matrix.Sparse:
			n += int64(t.NNZ())
		default:
			n += int64(m.Rows() * m.Cols())
		}
	}

	return n
}
