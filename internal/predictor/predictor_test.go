package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-sod/b2t/internal/geom"
)

func TestRecord_Candidates(t *testing.T) {
	t.Parallel()
	r := Record{Labels: []string{"b", "a", "b", "c", "a", "d"}}
	tests := []struct {
		name     string
		n        int
		expected []string
	}{
		{name: "all", n: 0, expected: []string{"b", "a", "c", "d"}},
		{name: "two", n: 2, expected: []string{"b", "a"}},
		{name: "more_than_distinct", n: 10, expected: []string{"b", "a", "c", "d"}},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, r.Candidates(test.n), test.name)
	}
	assert.Equal(t, "b", r.Top())
	assert.Equal(t, "", Record{}.Top())
	assert.Empty(t, Record{}.Candidates(3))
}

func TestConfig_Resolve(t *testing.T) {
	t.Parallel()
	k, m, err := Config{K: 3, Metric: "COSINE"}.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, 3, k)
	assert.Equal(t, geom.MetricCosine, m)

	_, _, err = Config{K: 0, Metric: "euclidean"}.Resolve()
	assert.ErrorIs(t, err, ErrInvalidK)
	_, _, err = Config{K: 1, Metric: "jaccard"}.Resolve()
	assert.ErrorIs(t, err, geom.ErrUnknownMetric)
}

func TestParseIndex(t *testing.T) {
	t.Parallel()
	got, err := ParseIndex(" KDTree ")
	assert.NoError(t, err)
	assert.Equal(t, IndexKDTree, got)

	_, err = ParseIndex("annoy")
	assert.ErrorIs(t, err, ErrUnknownIndex)

	idx, err := Config{Index: "brute"}.IndexType()
	assert.NoError(t, err)
	assert.Equal(t, IndexBrute, idx)
}
