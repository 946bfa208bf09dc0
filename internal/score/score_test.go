package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/b2t/internal/predictor"
)

func rec(id string, labels ...string) predictor.Record {
	d := make([]float64, len(labels))
	for i := range d {
		d[i] = float64(i + 1)
	}
	return predictor.Record{QueryID: id, Labels: labels, Distances: d}
}

func TestScore_TopK(t *testing.T) {
	t.Parallel()
	ids := []string{"q1", "q2", "q3", "q4", "q5"}
	truth := []string{"a", "b", "c", "d", "e"}
	records := []predictor.Record{
		rec("q1", "a", "x", "y"),
		rec("q2", "x", "b", "y"),
		rec("q3", "x", "y", "c"),
		rec("q4", "x", "y", "z"),
		rec("q5", "x", "y", "z", "e"),
	}

	m, err := Score(records, ids, truth, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, m.NExamples)
	assert.Equal(t, 3, m.TopK)
	assert.InDelta(t, 0.6, m.TopKAccuracy, 1e-12)
	assert.InDelta(t, 0.2, m.Top1Accuracy, 1e-12)
	assert.InDelta(t, 1.0, m.MeanTop1Distance, 1e-12)
	assert.InDelta(t, 1.0, m.MedianTop1Distance, 1e-12)
}

func TestScore_DuplicateLabelsDoNotConsumeRanks(t *testing.T) {
	t.Parallel()
	records := []predictor.Record{rec("q", "x", "x", "x", "a")}

	m, err := Score(records, []string{"q"}, []string{"a"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.TopKAccuracy)
	assert.Equal(t, 0.0, m.Top1Accuracy)
}

func TestScore_Mismatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		records []predictor.Record
		ids     []string
		labels  []string
	}{
		{name: "length", records: []predictor.Record{rec("q1", "a")}, ids: []string{"q1", "q2"}, labels: []string{"a", "b"}},
		{name: "ids length", records: []predictor.Record{rec("q1", "a")}, ids: nil, labels: []string{"a"}},
		{name: "misaligned", records: []predictor.Record{rec("q2", "a"), rec("q1", "b")}, ids: []string{"q1", "q2"}, labels: []string{"a", "b"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Score(tc.records, tc.ids, tc.labels, 3)
			assert.ErrorIs(t, err, ErrLabelSetMismatch)
		})
	}
}

func TestScore_Empty(t *testing.T) {
	t.Parallel()
	m, err := Score(nil, nil, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, Metrics{TopK: 5}, m)
}
