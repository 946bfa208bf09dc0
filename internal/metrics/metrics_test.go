package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
)

func TestRecordExtract(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register(), "registering the same views twice is allowed")

	RecordExtract(context.Background(), "metrics-test", 12, 30*time.Millisecond)
	RecordExtract(context.Background(), "metrics-test", 3, 10*time.Millisecond)

	rows, err := view.RetrieveData("b2t/segments_extracted_total")
	require.NoError(t, err)

	var total float64
	for _, row := range rows {
		for _, tg := range row.Tags {
			if tg.Key == KeySplit && tg.Value == "metrics-test" {
				total = row.Data.(*view.SumData).Value
			}
		}
	}
	assert.Equal(t, 15.0, total)
}
