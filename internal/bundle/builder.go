package bundle

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/metrics"
	"github.com/go-sod/b2t/internal/signal"
	"github.com/go-sod/b2t/pkg/math/vector"
)

type Option func(*builder)

// WithWorkers bounds the number of segments extracted concurrently. Values
// <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *builder) {
		b.workers = n
	}
}

type builder struct {
	workers int
}

// Build extracts every segment of ds, preserving input order, and checks
// that all feature vectors have the same length.
func Build(ctx context.Context, ds *signal.Dataset, spec extract.WindowSpec, method extract.Method, opts ...Option) (*Bundle, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers <= 0 {
		b.workers = runtime.GOMAXPROCS(0)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if _, err := extract.ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: split %s has no segments", ErrEmptyBundle, ds.Split)
	}

	logger := logging.FromContext(ctx)
	started := time.Now()

	features := make([]vector.V, ds.Len())
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(b.workers)
	for i := range ds.Segments {
		if grpCtx.Err() != nil {
			break
		}
		i := i
		grp.Go(func() error {
			seg := ds.Segments[i]
			vec, err := extract.Extract(seg.Data, spec, method)
			if err != nil {
				return fmt.Errorf("segment %d (%s): %w", i, seg.ID, err)
			}
			features[i] = vec
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("build %s bundle: %w", ds.Split, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, ds.Len())
	var labels []string
	for i, seg := range ds.Segments {
		ids[i] = seg.ID
		if ids[i] == "" {
			ids[i] = fmt.Sprintf("%s-%d", ds.Split, i)
		}
		if seg.Label != "" && labels == nil {
			labels = make([]string, ds.Len())
		}
	}
	if labels != nil {
		for i, seg := range ds.Segments {
			labels[i] = seg.Label
		}
	}

	bundle, err := New(ds.Split, features, ids, labels)
	if err != nil {
		return nil, fmt.Errorf("build %s bundle: %w", ds.Split, err)
	}

	elapsed := time.Since(started)
	metrics.RecordExtract(ctx, ds.Split, bundle.Len(), elapsed)
	logger.Infof("built %s bundle: %d rows, %d features, %s", ds.Split, bundle.Len(), bundle.Dim, elapsed)
	return bundle, nil
}
