package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/score"
)

func records() []predictor.Record {
	return []predictor.Record{
		{QueryID: "q1", Labels: []string{"a", "a", "b"}, Distances: []float64{0.5, 1, 2}, Indices: []int{3, 0, 1}},
		{QueryID: "q2", Labels: []string{"c"}, Distances: []float64{0.25}, Indices: []int{2}},
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, records(), 3))

	want := strings.Join([]string{
		"id,pred_1,pred_2,pred_3",
		"q1,a,b,",
		"q2,c,,",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteTable_InvalidTopK(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteTable(&buf, records(), 0), predictor.ErrInvalidK)
	assert.Zero(t, buf.Len())
}

func TestWriteNeighbors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteNeighbors(&buf, records()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "query_id,rank,label,distance,train_index", lines[0])
	assert.Equal(t, "q1,1,a,0.5,3", lines[1])
	assert.Equal(t, "q2,1,c,0.25,2", lines[4])
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	m := score.Metrics{Top1Accuracy: 0.5, TopKAccuracy: 0.75, NExamples: 4, TopK: 5}
	require.NoError(t, WriteSummary(&buf, m))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 0.75, got["topk_accuracy"])
	assert.Equal(t, float64(4), got["n_examples"])
}
