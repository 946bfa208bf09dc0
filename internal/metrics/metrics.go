// Package metrics defines the OpenCensus measures recorded while extracting
// and decoding, and exposes them to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var KeySplit = tag.MustNewKey("split")

var (
	SegmentsExtracted = stats.Int64("b2t/segments_extracted", "Segments turned into feature vectors", stats.UnitDimensionless)
	ExtractLatency    = stats.Float64("b2t/extract_latency", "Time to featurize one split", stats.UnitMilliseconds)
	QueriesDecoded    = stats.Int64("b2t/queries_decoded", "Query vectors ranked by the decoder", stats.UnitDimensionless)
	DecodeLatency     = stats.Float64("b2t/decode_latency", "Time to rank one batch of queries", stats.UnitMilliseconds)
)

var latencyBuckets = view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000)

var Views = []*view.View{
	{
		Name:        "b2t/segments_extracted_total",
		Measure:     SegmentsExtracted,
		Description: "Total segments turned into feature vectors",
		TagKeys:     []tag.Key{KeySplit},
		Aggregation: view.Sum(),
	},
	{
		Name:        "b2t/extract_latency",
		Measure:     ExtractLatency,
		Description: "Distribution of split featurization time",
		TagKeys:     []tag.Key{KeySplit},
		Aggregation: latencyBuckets,
	},
	{
		Name:        "b2t/queries_decoded_total",
		Measure:     QueriesDecoded,
		Description: "Total query vectors ranked",
		TagKeys:     []tag.Key{KeySplit},
		Aggregation: view.Sum(),
	},
	{
		Name:        "b2t/decode_latency",
		Measure:     DecodeLatency,
		Description: "Distribution of decode batch time",
		TagKeys:     []tag.Key{KeySplit},
		Aggregation: latencyBuckets,
	},
}

func Register() error {
	if err := view.Register(Views...); err != nil {
		return fmt.Errorf("register views: %w", err)
	}
	return nil
}

// NewExporter returns a Prometheus exporter; it is an http.Handler serving
// the scrape endpoint.
func NewExporter(namespace string) (*prometheus.Exporter, error) {
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	return exporter, nil
}

func RecordExtract(ctx context.Context, split string, n int, d time.Duration) {
	record(ctx, split, SegmentsExtracted.M(int64(n)), ExtractLatency.M(milliseconds(d)))
}

func RecordDecode(ctx context.Context, split string, n int, d time.Duration) {
	record(ctx, split, QueriesDecoded.M(int64(n)), DecodeLatency.M(milliseconds(d)))
}

func record(ctx context.Context, split string, ms ...stats.Measurement) {
	// Recording only fails on invalid tag values.
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeySplit, split)}, ms...)
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
