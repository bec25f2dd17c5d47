// SPDX-License-Identifier: MIT

package product

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvlath-lfp/combination"
	"github.com/katalvlaran/lvlath-lfp/matrix"
)

// FeaturesProduct adds pairwise product features to batches of longitudinal
// exposure matrices (one n_intervals × n_features matrix per subject).
//
// Lifecycle:
//   - New fixes the exposure type and fan-out width.
//   - Fit inspects a batch, builds the combination map and selects the engine.
//   - Transform applies that engine to every subject of a batch in parallel.
//
// Thread safety: Transform and Mapper may run concurrently with each other
// and with Fit; each call works on the fitted state it observed on entry.
type FeaturesProduct struct {
	opts  options
	state atomic.Pointer[fitState]

	// beforeSubject, when set, runs in the worker right before a subject is
	// processed. Tests use it to perturb completion order.
	beforeSubject func(index int)
}

// fitState is immutable once stored.
type fitState struct {
	mapper     *combination.Map
	nIntervals int
	form       StorageForm
	strategy   Strategy
}

// New returns an unfitted transformer.
//
// Errors:
//   - ErrInvalidExposureType, ErrInvalidParallelism (both ErrConfiguration).
func New(opts ...Option) (*FeaturesProduct, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, productErrorf("product.New", err)
	}

	return &FeaturesProduct{opts: o}, nil
}

// ExposureType returns the configured exposure semantics.
func (p *FeaturesProduct) ExposureType() ExposureType { return p.opts.exposure }

// Parallelism returns the configured fan-out width (possibly AllCPUs).
func (p *FeaturesProduct) Parallelism() int { return p.opts.parallelism }

// Fit validates batch and prepares the transformer for it.
// MAIN DESCRIPTION:
//   - Any previous fit is discarded first, so a failed Fit leaves the
//     transformer unfitted.
//   - All subjects must share (n_intervals, n_features) and storage form.
//   - Builds the combination map for n_features and selects the engine.
//
// Errors:
//   - ErrEmptyBatch, ErrShapeMismatch, ErrMixedStorage, ErrUnsupportedStorage,
//     ErrDenseInfinite, and combination.ErrTooFewFeatures wrapped together with
//     ErrConfiguration.
//
// Inputs are never mutated.
func (p *FeaturesProduct) Fit(batch []matrix.Matrix) error {
	p.state.Store(nil)

	shape, err := checkBatch(batch)
	if err != nil {
		return productErrorf("product.Fit", err)
	}
	mapper, err := combination.New(shape.nFeatures)
	if err != nil {
		return fmt.Errorf("product.Fit: %w: %w", ErrConfiguration, err)
	}
	strategy, err := SelectStrategy(p.opts.exposure, shape.form)
	if err != nil {
		return productErrorf("product.Fit", err)
	}

	p.state.Store(&fitState{
		mapper:     mapper,
		nIntervals: shape.nIntervals,
		form:       shape.form,
		strategy:   strategy,
	})
	p.opts.logger.Debug("features product fitted",
		"exposure_type", p.opts.exposure.String(),
		"storage", shape.form.String(),
		"strategy", strategy.String(),
		"n_intervals", shape.nIntervals,
		"n_features", shape.nFeatures,
		"n_output_features", mapper.NOutputFeatures(),
	)

	return nil
}

// Transform returns the augmented matrices of batch, in input order.
// MAIN DESCRIPTION:
//   - Every result has shape (n_intervals, n_output_features) and the same
//     storage form as its input; columns 0..n_features-1 equal the input.
//   - Subjects are processed by a worker pool of the configured width; each
//     result is written to the slot of its input index.
//   - Fail-fast: the first subject error cancels the remaining work and is
//     returned; no partial results are returned.
//
// Errors:
//   - ErrNotFitted before Fit.
//   - ErrEmptyBatch, ErrShapeMismatch, ErrMixedStorage when batch does not
//     match the fitted one.
//   - ErrDuplicateStart from the infinite-exposure engine, wrapped with the
//     subject index.
//   - ctx.Err() when ctx ends first.
func (p *FeaturesProduct) Transform(ctx context.Context, batch []matrix.Matrix) (out []matrix.Matrix, err error) {
	st := p.state.Load()
	if st == nil {
		TransformErrors.WithLabelValues(kindUsage).Inc()
		return nil, productErrorf("product.Transform", ErrNotFitted)
	}

	ctx, span := tracer.Start(ctx, "product.Transform", trace.WithAttributes(
		attribute.String("lfp.strategy", st.strategy.String()),
		attribute.Int("lfp.batch_size", len(batch)),
	))
	start := time.Now()
	defer func() {
		if err != nil {
			TransformErrors.WithLabelValues(errorKind(err)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			TransformDuration.WithLabelValues(st.strategy.String()).Observe(time.Since(start).Seconds())
		}
		span.End()
	}()

	if err = st.checkFitted(batch); err != nil {
		return nil, productErrorf("product.Transform", err)
	}
	out, err = p.runBatch(ctx, st, batch)
	if err != nil {
		return nil, productErrorf("product.Transform", err)
	}
	p.opts.logger.Debug("features product transformed",
		"strategy", st.strategy.String(),
		"subjects", len(batch),
		"duration", time.Since(start),
	)

	return out, nil
}

// FitTransform fits on batch and transforms the same batch.
func (p *FeaturesProduct) FitTransform(ctx context.Context, batch []matrix.Matrix) ([]matrix.Matrix, error) {
	if err := p.Fit(batch); err != nil {
		return nil, err
	}

	return p.Transform(ctx, batch)
}

// Mapper returns the fitted combination map. The map is immutable and may be
// shared freely; use Map.Mapping for a mutable column → pair copy.
//
// Errors: ErrNotFitted before Fit.
func (p *FeaturesProduct) Mapper() (*combination.Map, error) {
	st := p.state.Load()
	if st == nil {
		return nil, productErrorf("product.Mapper", ErrNotFitted)
	}

	return st.mapper, nil
}

// NOutputFeatures returns n_features + C(n_features, 2) of the fitted shape.
func (p *FeaturesProduct) NOutputFeatures() (int, error) {
	m, err := p.Mapper()
	if err != nil {
		return 0, err
	}

	return m.NOutputFeatures(), nil
}

// Strategy returns the engine selected by Fit.
func (p *FeaturesProduct) Strategy() (Strategy, error) {
	st := p.state.Load()
	if st == nil {
		return 0, productErrorf("product.Strategy", ErrNotFitted)
	}

	return st.strategy, nil
}
