package predict

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"B2T_PREDICT_REQUEST_TIMEOUT" default:"30s" toml:"request_timeout" yaml:"request_timeout"`
	MaxDataItemsLen int           `envconfig:"B2T_PREDICT_MAX_DATA_ITEMS_LEN" default:"256" toml:"max_data_items_len" yaml:"max_data_items_len"`
	CacheSize       int           `envconfig:"B2T_PREDICT_CACHE_SIZE" default:"4096" toml:"cache_size" yaml:"cache_size"`
	Workers         int           `envconfig:"B2T_PREDICT_WORKERS" default:"8" toml:"workers" yaml:"workers"`
}
