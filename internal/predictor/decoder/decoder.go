// Package decoder ranks training labels for query feature vectors by
// nearest-neighbour search.
//
// A Decoder starts unfitted. Fit indexes a labeled training bundle; calling
// it again replaces the index. A failed Fit leaves the previous state in
// place. Predict calls only read the fitted state and may run concurrently
// with each other and with Fit.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-sod/b2t/internal/artifact"
	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/metrics"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/predictor/knn/brute"
	"github.com/go-sod/b2t/internal/predictor/knn/kdtree"
)

var ErrUnlabeled = errors.New("training bundle has no labels")

type Option func(*Decoder)

// WithWorkers bounds how many queries Predict ranks concurrently. Values
// <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Decoder) {
		d.workers = n
	}
}

// WithIndex selects the search structure built by Fit. The default is an
// exact brute force scan.
func WithIndex(t predictor.IndexType) Option {
	return func(d *Decoder) {
		d.indexType = t
	}
}

func New(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers <= 0 {
		d.workers = runtime.GOMAXPROCS(0)
	}
	if d.indexType == "" {
		d.indexType = predictor.IndexBrute
	}
	return d
}

type Decoder struct {
	mtx       sync.RWMutex
	state     *state
	workers   int
	indexType predictor.IndexType
}

// state is immutable once published by Fit.
type state struct {
	index  predictor.Index
	train  *bundle.Bundle
	k      int
	metric geom.MetricType
}

// Fit indexes train for k-nearest-neighbour ranking under metric. The
// training rows are shared, not copied, and must not be modified afterwards.
func (d *Decoder) Fit(train *bundle.Bundle, k int, metric geom.MetricType) error {
	if k < 1 {
		return fmt.Errorf("%w: got %d", predictor.ErrInvalidK, k)
	}
	distFn, err := geom.DistanceFuncFor(metric)
	if err != nil {
		return err
	}
	if train == nil || train.Len() == 0 {
		return fmt.Errorf("fit: %w", bundle.ErrEmptyBundle)
	}
	if err := train.Validate(); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	if !train.Labeled() {
		return fmt.Errorf("fit on split %s: %w", train.Split, ErrUnlabeled)
	}

	index, err := d.newIndex(metric, distFn)
	if err != nil {
		return err
	}
	points := make([][]float64, train.Len())
	for i := range train.Features {
		points[i] = train.Features[i]
	}
	index.Build(points...)

	trainCopy := *train
	d.mtx.Lock()
	d.state = &state{index: index, train: &trainCopy, k: k, metric: metric}
	d.mtx.Unlock()
	return nil
}

func (d *Decoder) newIndex(metric geom.MetricType, distFn geom.DistanceFn) (predictor.Index, error) {
	switch d.indexType {
	case predictor.IndexBrute:
		return brute.NewBruteAlg(distFn), nil
	case predictor.IndexKDTree:
		return kdtree.New(metric)
	default:
		return nil, fmt.Errorf("%w: %q", predictor.ErrUnknownIndex, string(d.indexType))
	}
}

func (d *Decoder) current() (*state, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	if d.state == nil {
		return nil, predictor.ErrNotFitted
	}
	return d.state, nil
}

func (d *Decoder) Fitted() bool {
	_, err := d.current()
	return err == nil
}

// Params returns k, the metric and the feature dimension of the fitted index.
func (d *Decoder) Params() (int, geom.MetricType, int, error) {
	st, err := d.current()
	if err != nil {
		return 0, "", 0, err
	}
	return st.k, st.metric, st.train.Dim, nil
}

// Predict ranks every row of query. The result is parallel to query's rows.
func (d *Decoder) Predict(ctx context.Context, query *bundle.Bundle) ([]predictor.Record, error) {
	st, err := d.current()
	if err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	for i := range query.Features {
		if len(query.Features[i]) != st.train.Dim {
			return nil, fmt.Errorf(
				"%w: query row %d (%s) has %d features, model expects %d",
				predictor.ErrDimensionMismatch, i, query.IDs[i], len(query.Features[i]), st.train.Dim,
			)
		}
	}

	started := time.Now()
	records := make([]predictor.Record, query.Len())
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(d.workers)
	for i := range query.Features {
		if grpCtx.Err() != nil {
			break
		}
		i := i
		grp.Go(func() error {
			rec, err := st.predict(query.IDs[i], query.Features[i])
			if err != nil {
				return fmt.Errorf("query %d (%s): %w", i, query.IDs[i], err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elapsed := time.Since(started)
	metrics.RecordDecode(ctx, query.Split, len(records), elapsed)
	logging.FromContext(ctx).Debugf("decoded %d %s queries in %s", len(records), query.Split, elapsed)
	return records, nil
}

// PredictVector ranks a single query vector.
func (d *Decoder) PredictVector(id string, vec []float64) (predictor.Record, error) {
	st, err := d.current()
	if err != nil {
		return predictor.Record{}, err
	}
	if len(vec) != st.train.Dim {
		return predictor.Record{}, fmt.Errorf(
			"%w: query %s has %d features, model expects %d",
			predictor.ErrDimensionMismatch, id, len(vec), st.train.Dim,
		)
	}
	return st.predict(id, vec)
}

func (st *state) predict(id string, vec []float64) (predictor.Record, error) {
	nn, err := st.index.KNN(vec, st.k)
	if err != nil {
		return predictor.Record{}, err
	}
	rec := predictor.Record{
		QueryID:   id,
		Labels:    make([]string, len(nn)),
		Distances: make([]float64, len(nn)),
		Indices:   make([]int, len(nn)),
	}
	for i, n := range nn {
		rec.Labels[i] = st.train.Labels[n.Index]
		rec.Distances[i] = n.Distance
		rec.Indices[i] = n.Index
	}
	return rec, nil
}

// Model packages the fitted state with the extraction settings that produced
// the training features.
func (d *Decoder) Model(spec extract.WindowSpec, method extract.Method) (*artifact.Model, error) {
	st, err := d.current()
	if err != nil {
		return nil, err
	}
	return artifact.New(st.train, st.k, st.metric, spec, method)
}

// Restore fits the decoder from a loaded model artifact.
func (d *Decoder) Restore(m *artifact.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return d.Fit(m.Train, m.K, m.Metric)
}
