// SPDX-License-Identifier: MIT

package product

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvlath-lfp/matrix"
)

// batchShape is the common shape and storage form of a validated batch.
type batchShape struct {
	nIntervals int
	nFeatures  int
	form       StorageForm
}

// checkBatch verifies that batch is non-empty and that every subject shares
// the first subject's shape and storage form.
// Complexity: O(len(batch)).
func checkBatch(batch []matrix.Matrix) (batchShape, error) {
	if len(batch) == 0 {
		return batchShape{}, ErrEmptyBatch
	}
	var shape batchShape
	for i, x := range batch {
		if err := matrix.ValidateNotNil(x); err != nil {
			return batchShape{}, fmt.Errorf("subject %d: %w: %w", i, ErrConfiguration, err)
		}
		form, err := FormOf(x)
		if err != nil {
			return batchShape{}, fmt.Errorf("subject %d: %w", i, err)
		}
		if i == 0 {
			shape = batchShape{nIntervals: x.Rows(), nFeatures: x.Cols(), form: form}
			continue
		}
		if x.Rows() != shape.nIntervals || x.Cols() != shape.nFeatures {
			return batchShape{}, fmt.Errorf("subject %d is %dx%d, subject 0 is %dx%d: %w",
				i, x.Rows(), x.Cols(), shape.nIntervals, shape.nFeatures, ErrShapeMismatch)
		}
		if form != shape.form {
			return batchShape{}, fmt.Errorf("subject %d is %v, subject 0 is %v: %w", i, form, shape.form, ErrMixedStorage)
		}
	}

	return shape, nil
}

// checkFitted verifies batch against the fitted shape and storage form.
func (st *fitState) checkFitted(batch []matrix.Matrix) error {
	shape, err := checkBatch(batch)
	if err != nil {
		return err
	}
	if shape.nIntervals != st.nIntervals || shape.nFeatures != st.mapper.NFeatures() {
		return fmt.Errorf("batch is %dx%d, fitted %dx%d: %w",
			shape.nIntervals, shape.nFeatures, st.nIntervals, st.mapper.NFeatures(), ErrShapeMismatch)
	}
	if shape.form != st.form {
		return fmt.Errorf("batch is %v, fitted %v: %w", shape.form, st.form, ErrMixedStorage)
	}

	return nil
}

// runBatch fans the fitted strategy out over batch.
// MAIN DESCRIPTION:
//   - At most workers(len(batch)) subjects run at once.
//   - Results land in out[i] for input i, whatever the completion order.
//   - The first error cancels gctx; subjects not yet started are skipped.
//
// The combination map is the only shared state and is read-only.
func (p *FeaturesProduct) runBatch(ctx context.Context, st *fitState, batch []matrix.Matrix) ([]matrix.Matrix, error) {
	out := make([]matrix.Matrix, len(batch))
	label := st.strategy.String()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.workers(len(batch)))
	for i, x := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if p.beforeSubject != nil {
				p.beforeSubject(i)
			}
			res, err := st.strategy.Apply(x, st.mapper)
			if err != nil {
				return fmt.Errorf("subject %d: %w", i, err)
			}
			out[i] = res
			SubjectsTransformed.WithLabelValues(label).Inc()
			DerivedEntries.WithLabelValues(label).Add(float64(derivedCount(x, res, st.mapper.Len())))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// derivedCount is the number of interaction cells res added on top of x.
func derivedCount(x, res matrix.Matrix, pairs int) int {
	in, okIn := x.(*matrix.Sparse)
	sp, okOut := res.(*matrix.Sparse)
	if okIn && okOut {
		return sp.NNZ() - in.NNZ()
	}

	return res.Rows() * pairs
}
