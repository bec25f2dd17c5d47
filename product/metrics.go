// SPDX-License-Identifier: MIT

package product

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

// tracer emits one span per Transform call; a no-op until an SDK is installed.
var tracer = otel.Tracer("github.com/katalvlaran/lvlath-lfp/product")

// Buckets for per-batch latency, from 100µs to ~100s.
var transformBuckets = prometheus.ExponentialBuckets(0.0001, 4, 11)

var (
	// SubjectsTransformed counts subjects processed successfully, by strategy.
	SubjectsTransformed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfp_subjects_transformed_total",
			Help: "Subjects augmented with product features",
		},
		[]string{"strategy"},
	)

	// TransformErrors counts failed Transform calls by error category.
	TransformErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfp_transform_errors_total",
			Help: "Failed transform calls",
		},
		[]string{"kind"},
	)

	// TransformDuration records whole-batch Transform latency in seconds.
	TransformDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfp_transform_duration_seconds",
			Help:    "Batch transform duration",
			Buckets: transformBuckets,
		},
		[]string{"strategy"},
	)

	// DerivedEntries counts interaction cells emitted (stored entries for
	// sparse strategies, rows × pairs for dense).
	DerivedEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfp_derived_entries_total",
			Help: "Interaction entries emitted",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(
		SubjectsTransformed,
		TransformErrors,
		TransformDuration,
		DerivedEntries,
	)
}

// Error kinds used as the TransformErrors label.
const (
	kindConfiguration = "configuration"
	kindDataIntegrity = "data_integrity"
	kindUsage         = "usage"
	kindCanceled      = "canceled"
	kindOther         = "other"
)

// errorKind classifies err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return kindConfiguration
	case errors.Is(err, ErrDataIntegrity):
		return kindDataIntegrity
	case errors.Is(err, ErrUsage):
		return kindUsage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return kindCanceled
	}

	return kindOther
}
