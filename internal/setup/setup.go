// Package setup turns a configuration struct into a srvenv.SrvEnv. The
// struct opts into each component by implementing its provider interface.
package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/go-sod/b2t/internal/artifact"
	artifactDb "github.com/go-sod/b2t/internal/artifact/database"
	"github.com/go-sod/b2t/internal/bundle"
	bundleDb "github.com/go-sod/b2t/internal/bundle/database"
	"github.com/go-sod/b2t/internal/bundle/redisdb"
	"github.com/go-sod/b2t/internal/database"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/featurize"
	"github.com/go-sod/b2t/internal/layout"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/predict"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/predictor/decoder"
	"github.com/go-sod/b2t/internal/srvenv"
)

type ExtractConfigProvider interface {
	ExtractConfig() *extract.Config
}

type PredictorConfigProvider interface {
	PredictorConfig() *predictor.Config
}

type StoreConfigProvider interface {
	StoreConfig() *database.Config
}

type PredictConfigProvider interface {
	PredictConfig() *predict.Config
}

type FeaturizeConfigProvider interface {
	FeaturizeConfig() *featurize.Config
}

type LayoutConfigProvider interface {
	LayoutConfig() *layout.Config
}

type FileConfigProvider interface {
	File() string
	Overlay() error
}

type workersProvider interface {
	WorkerCount() int
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		extractCfg   *extract.Config
		predictorCfg *predictor.Config
		storeCfg     *database.Config
		layoutCfg    *layout.Config
	)
	if p, ok := config.(ExtractConfigProvider); ok {
		extractCfg = p.ExtractConfig()
		if err := envconfig.Process("", extractCfg); err != nil {
			return nil, fmt.Errorf("dont process extract env: %w", err)
		}
	}
	if p, ok := config.(PredictorConfigProvider); ok {
		predictorCfg = p.PredictorConfig()
		if err := envconfig.Process("", predictorCfg); err != nil {
			return nil, fmt.Errorf("dont process predictor env: %w", err)
		}
	}
	if p, ok := config.(StoreConfigProvider); ok {
		storeCfg = p.StoreConfig()
		if err := envconfig.Process("", storeCfg); err != nil {
			return nil, fmt.Errorf("dont process store env: %w", err)
		}
	}
	if p, ok := config.(PredictConfigProvider); ok {
		if err := envconfig.Process("", p.PredictConfig()); err != nil {
			return nil, fmt.Errorf("dont process predict handler env: %w", err)
		}
	}
	if p, ok := config.(FeaturizeConfigProvider); ok {
		if err := envconfig.Process("", p.FeaturizeConfig()); err != nil {
			return nil, fmt.Errorf("dont process extract handler env: %w", err)
		}
	}
	if p, ok := config.(LayoutConfigProvider); ok {
		l, err := layout.FromEnv(ctx)
		if err != nil {
			return nil, err
		}
		layoutCfg = p.LayoutConfig()
		*layoutCfg = *l
	}

	if p, ok := config.(FileConfigProvider); ok && p.File() != "" {
		logger.Infof("Applying config file %s", p.File())
		if err := p.Overlay(); err != nil {
			return nil, err
		}
	}

	var params srvenv.Params
	if extractCfg != nil {
		spec, method, err := extractCfg.Resolve()
		if err != nil {
			return nil, fmt.Errorf("extract config: %w", err)
		}
		params.Window, params.Method = spec, method
	}
	if predictorCfg != nil {
		k, metric, err := predictorCfg.Resolve()
		if err != nil {
			return nil, fmt.Errorf("predictor config: %w", err)
		}
		if predictorCfg.TopK < 1 {
			return nil, fmt.Errorf("predictor config: %w: top_k=%d", predictor.ErrInvalidK, predictorCfg.TopK)
		}
		index, err := predictorCfg.IndexType()
		if err != nil {
			return nil, fmt.Errorf("predictor config: %w", err)
		}
		params.K, params.Metric, params.Index, params.TopK = k, metric, index, predictorCfg.TopK
	}
	if p, ok := config.(workersProvider); ok {
		params.Workers = p.WorkerCount()
	}
	serverEnvOpts = append(serverEnvOpts, srvenv.WithParams(params))

	if layoutCfg != nil {
		logger.Debugf("Data layout: %+v", *layoutCfg)
		serverEnvOpts = append(serverEnvOpts,
			srvenv.WithLayout(layoutCfg),
			srvenv.WithDecoder(ProvideDecoderFor(layoutCfg, params)),
		)
		if storeCfg != nil {
			logger.Infof("Configuring %s feature store", storeCfg.Backend)
			provideFn, err := ProvideStoreFor(storeCfg, layoutCfg)
			if err != nil {
				return nil, fmt.Errorf("unable create store provide function: %w", err)
			}
			serverEnvOpts = append(serverEnvOpts, srvenv.WithStore(provideFn))
		}
	}

	return srvenv.New(serverEnvOpts...), nil
}

// ProvideStoreFor returns the feature store factory of the configured
// backend. The bolt backend keeps one file per split.
func ProvideStoreFor(cfg *database.Config, l *layout.Config) (bundle.ProvideFn, error) {
	switch cfg.Backend {
	case database.BackendBolt:
		return func(ctx context.Context, split string) (bundle.StoreCloser, error) {
			db, err := database.Open(ctx, l.Features(split))
			if err != nil {
				return nil, err
			}
			return bundleDb.New(db), nil
		}, nil
	case database.BackendRedis:
		return func(ctx context.Context, _ string) (bundle.StoreCloser, error) {
			return redisdb.NewFromConfig(ctx, cfg)
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

func ProvideDecoderFor(l *layout.Config, params srvenv.Params) srvenv.DecoderProvideFn {
	return func(ctx context.Context) (*decoder.Decoder, *artifact.Model, error) {
		m, err := artifactDb.LoadFile(ctx, l.Model())
		if err != nil {
			return nil, nil, fmt.Errorf("load model %s: %w", l.Model(), err)
		}
		d := decoder.New(decoder.WithWorkers(params.Workers), decoder.WithIndex(params.Index))
		if err := d.Restore(m); err != nil {
			return nil, nil, err
		}
		logging.FromContext(ctx).Infof("Loaded model %s (k=%d, metric=%s, %d training rows)", m.ID, m.K, m.Metric, m.Train.Len())
		return d, m, nil
	}
}
