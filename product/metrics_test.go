// SPDX-License-Identifier: MIT

package product_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlath-lfp/matrix"
	"github.com/katalvlaran/lvlath-lfp/product"
)

// Not parallel: counters are package-global.
func TestMetrics_CountSubjectsAndErrors(t *testing.T) {
	label := product.StrategyDenseShort.String()
	subjectsBefore := testutil.ToFloat64(product.SubjectsTransformed.WithLabelValues(label))
	derivedBefore := testutil.ToFloat64(product.DerivedEntries.WithLabelValues(label))
	usageBefore := testutil.ToFloat64(product.TransformErrors.WithLabelValues("usage"))

	p := newProduct(t, product.WithExposureType(product.Short))
	batch := []matrix.Matrix{
		denseRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}}),
		denseRows(t, [][]float64{{0, 0, 1}, {1, 0, 0}}),
	}
	_, err := p.FitTransform(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, subjectsBefore+2, testutil.ToFloat64(product.SubjectsTransformed.WithLabelValues(label)))
	// 2 subjects × 2 rows × 3 pairs.
	assert.Equal(t, derivedBefore+12, testutil.ToFloat64(product.DerivedEntries.WithLabelValues(label)))

	unfitted := newProduct(t)
	_, err = unfitted.Transform(context.Background(), batch)
	require.Error(t, err)
	assert.Equal(t, usageBefore+1, testutil.ToFloat64(product.TransformErrors.WithLabelValues("usage")))
}

func TestMetrics_Registered(t *testing.T) {
	product.TransformDuration.WithLabelValues("probe").Observe(0.01)
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	expected := map[string]bool{
		"lfp_subjects_transformed_total": false,
		"lfp_transform_errors_total":     false,
		"lfp_transform_duration_seconds": false,
		"lfp_derived_entries_total":      false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	// Vectors appear only after their first observation.
	product.SubjectsTransformed.WithLabelValues("probe")
	product.TransformErrors.WithLabelValues("probe")
	product.DerivedEntries.WithLabelValues("probe")
	families, err = prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, seen := range expected {
		assert.True(t, seen, "metric %s not registered", name)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want string
	}{
		{product.ErrShapeMismatch, "configuration"},
		{fmt.Errorf("subject 1: %w", product.ErrDuplicateStart), "data_integrity"},
		{product.ErrNotFitted, "usage"},
		{context.Canceled, "canceled"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, product.ErrorKind(tc.err), "%v", tc.err)
	}
}
