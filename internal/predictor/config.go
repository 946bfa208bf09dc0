package predictor

import (
	"fmt"

	"github.com/go-sod/b2t/internal/geom"
)

type Config struct {
	K      int    `envconfig:"B2T_K" default:"5" toml:"k" yaml:"k"`
	Metric string `envconfig:"B2T_METRIC" default:"euclidean" toml:"metric" yaml:"metric"`
	TopK   int    `envconfig:"B2T_TOP_K" default:"5" toml:"top_k" yaml:"top_k"`
	Index  string `envconfig:"B2T_INDEX" default:"brute" toml:"index" yaml:"index"`
}

// Resolve validates k and the metric name.
func (c Config) Resolve() (int, geom.MetricType, error) {
	if c.K < 1 {
		return 0, "", fmt.Errorf("%w: got %d", ErrInvalidK, c.K)
	}
	m, err := geom.ParseMetric(c.Metric)
	if err != nil {
		return 0, "", err
	}
	return c.K, m, nil
}

func (c Config) IndexType() (IndexType, error) {
	return ParseIndex(c.Index)
}
