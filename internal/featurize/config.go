package featurize

import (
	"time"
)

type Config struct {
	RequestTimeout time.Duration `envconfig:"B2T_EXTRACT_REQUEST_TIMEOUT" default:"60s" toml:"request_timeout" yaml:"request_timeout"`
	MaxSegments    int           `envconfig:"B2T_EXTRACT_MAX_SEGMENTS" default:"64" toml:"max_segments" yaml:"max_segments"`
	Workers        int           `envconfig:"B2T_EXTRACT_WORKERS" default:"0" toml:"workers" yaml:"workers"`
}
