// Package pipeline runs the offline steps: featurize each split, train the
// decoder, evaluate it on the validation split and write test predictions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-sod/b2t/internal/artifact"
	artifactDb "github.com/go-sod/b2t/internal/artifact/database"
	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/layout"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/predictor/decoder"
	"github.com/go-sod/b2t/internal/report"
	"github.com/go-sod/b2t/internal/score"
	"github.com/go-sod/b2t/internal/signal"
	"github.com/go-sod/b2t/internal/srvenv"
)

var (
	ErrWindowMismatch = errors.New("model was trained with different extraction settings")
	ErrNoGroundTruth  = errors.New("split has no labels to score against")
)

type Pipeline struct {
	params srvenv.Params
	layout *layout.Config
	stores bundle.ProvideFn
}

func New(env *srvenv.SrvEnv) (*Pipeline, error) {
	if env.Layout() == nil {
		return nil, errors.New("pipeline: data layout is not configured")
	}
	if env.ProvideStore() == nil {
		return nil, errors.New("pipeline: feature store is not configured")
	}
	return &Pipeline{
		params: env.Params(),
		layout: env.Layout(),
		stores: env.ProvideStore(),
	}, nil
}

// Featurize extracts the dataset file of split and stores the bundle.
func (p *Pipeline) Featurize(ctx context.Context, split string) (*bundle.Bundle, error) {
	logger := logging.FromContext(ctx)

	ds, err := signal.LoadFile(p.layout.Input(split), split)
	if err != nil {
		return nil, err
	}
	logger.Infof("Loaded %d %s segments", ds.Len(), split)

	b, err := bundle.Build(ctx, ds, p.params.Window, p.params.Method, bundle.WithWorkers(p.params.Workers))
	if err != nil {
		return nil, err
	}
	if err := p.withStore(ctx, split, func(s bundle.Store) error {
		return s.Save(ctx, b)
	}); err != nil {
		return nil, fmt.Errorf("save %s features: %w", split, err)
	}
	return b, nil
}

// Train fits the decoder on the stored train bundle and writes the model.
func (p *Pipeline) Train(ctx context.Context) (*artifact.Model, error) {
	train, err := p.load(ctx, bundle.SplitTrain)
	if err != nil {
		return nil, err
	}

	d := p.newDecoder()
	if err := d.Fit(train, p.params.K, p.params.Metric); err != nil {
		return nil, err
	}
	m, err := d.Model(p.params.Window, p.params.Method)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.layout.ModelDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", p.layout.ModelDir, err)
	}
	if err := artifactDb.SaveFile(ctx, p.layout.Model(), m); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	logging.FromContext(ctx).Infof("Trained model %s on %d rows (k=%d, metric=%s)", m.ID, train.Len(), m.K, m.Metric)
	return m, nil
}

// Predict ranks the stored bundle of split with the saved model and writes
// the prediction table and the neighbour list.
func (p *Pipeline) Predict(ctx context.Context, split string) ([]predictor.Record, error) {
	records, _, err := p.decode(ctx, split)
	if err != nil {
		return nil, err
	}
	if err := writeFile(p.layout.Predictions(split), func(w io.Writer) error {
		return report.WriteTable(w, records, p.params.TopK)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(p.layout.Neighbors(split), func(w io.Writer) error {
		return report.WriteNeighbors(w, records)
	}); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Infof("Wrote %d %s predictions to %s", len(records), split, p.layout.Predictions(split))
	return records, nil
}

// Evaluate predicts split, scores it against its labels and writes the
// summary.
func (p *Pipeline) Evaluate(ctx context.Context, split string) (score.Metrics, error) {
	records, query, err := p.decode(ctx, split)
	if err != nil {
		return score.Metrics{}, err
	}
	if !query.Labeled() {
		return score.Metrics{}, fmt.Errorf("evaluate %s: %w", split, ErrNoGroundTruth)
	}
	m, err := score.Score(records, query.IDs, query.Labels, p.params.TopK)
	if err != nil {
		return score.Metrics{}, err
	}
	if err := writeFile(p.layout.Summary(split), func(w io.Writer) error {
		return report.WriteSummary(w, m)
	}); err != nil {
		return score.Metrics{}, err
	}

	logging.FromContext(ctx).Infof(
		"%s: top-1 %.4f, top-%d %.4f over %d examples",
		split, m.Top1Accuracy, m.TopK, m.TopKAccuracy, m.NExamples,
	)
	return m, nil
}

// Run executes every step in order. Missing inputs are reported up front.
func (p *Pipeline) Run(ctx context.Context) (score.Metrics, error) {
	splits := []string{bundle.SplitTrain, bundle.SplitVal, bundle.SplitTest}
	if err := p.layout.CheckInputs(splits...); err != nil {
		return score.Metrics{}, err
	}
	if err := p.layout.Ensure(); err != nil {
		return score.Metrics{}, err
	}
	for _, split := range splits {
		if _, err := p.Featurize(ctx, split); err != nil {
			return score.Metrics{}, err
		}
	}
	if _, err := p.Train(ctx); err != nil {
		return score.Metrics{}, err
	}
	m, err := p.Evaluate(ctx, bundle.SplitVal)
	if err != nil {
		return score.Metrics{}, err
	}
	if _, err := p.Predict(ctx, bundle.SplitTest); err != nil {
		return score.Metrics{}, err
	}
	return m, nil
}

func (p *Pipeline) decode(ctx context.Context, split string) ([]predictor.Record, *bundle.Bundle, error) {
	m, err := artifactDb.LoadFile(ctx, p.layout.Model())
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	if m.Window != p.params.Window || m.Method != p.params.Method {
		return nil, nil, fmt.Errorf(
			"%w: model %s/%+v, configured %s/%+v",
			ErrWindowMismatch, m.Method, m.Window, p.params.Method, p.params.Window,
		)
	}
	d := p.newDecoder()
	if err := d.Restore(m); err != nil {
		return nil, nil, err
	}

	query, err := p.load(ctx, split)
	if err != nil {
		return nil, nil, err
	}
	records, err := d.Predict(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return records, query, nil
}

func (p *Pipeline) newDecoder() *decoder.Decoder {
	return decoder.New(decoder.WithWorkers(p.params.Workers), decoder.WithIndex(p.params.Index))
}

func (p *Pipeline) load(ctx context.Context, split string) (*bundle.Bundle, error) {
	var b *bundle.Bundle
	if err := p.withStore(ctx, split, func(s bundle.Store) error {
		var err error
		b, err = s.Load(ctx, split)
		return err
	}); err != nil {
		return nil, fmt.Errorf("load %s features: %w", split, err)
	}
	return b, nil
}

func (p *Pipeline) withStore(ctx context.Context, split string, fn func(bundle.Store) error) error {
	s, err := p.stores(ctx, split)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
