package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/pkg/math/vector"
)

func train(t *testing.T) *bundle.Bundle {
	t.Helper()
	b, err := bundle.New(bundle.SplitTrain, []vector.V{{1, 2}, {3, 4}}, []string{"a", "b"}, []string{"yes", "no"})
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	t.Parallel()
	spec := extract.WindowSpec{Window: 20, Stride: 10}
	m, err := New(train(t), 3, geom.MetricCosine, spec, extract.MethodStdPool)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID.String())
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, spec, m.Window)
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()
	spec := extract.WindowSpec{Window: 20, Stride: 20}
	tests := []struct {
		name   string
		mutate func(m *Model)
		want   error
	}{
		{name: "k", mutate: func(m *Model) { m.K = 0 }, want: predictor.ErrInvalidK},
		{name: "metric", mutate: func(m *Model) { m.Metric = "jaccard" }, want: geom.ErrUnknownMetric},
		{name: "method", mutate: func(m *Model) { m.Method = "sumpool" }, want: extract.ErrUnknownMethod},
		{name: "window", mutate: func(m *Model) { m.Window.Stride = 0 }, want: extract.ErrInvalidWindowSpec},
		{name: "train", mutate: func(m *Model) { m.Train = nil }, want: bundle.ErrEmptyBundle},
		{name: "rows", mutate: func(m *Model) { m.Train.IDs = m.Train.IDs[:1] }, want: bundle.ErrRowMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m, err := New(train(t), 1, geom.MetricEuclidean, spec, extract.MethodMeanPool)
			require.NoError(t, err)
			tc.mutate(m)
			assert.ErrorIs(t, m.Validate(), tc.want)
		})
	}
}
