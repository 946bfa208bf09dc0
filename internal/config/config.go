// Package config is the top level configuration of the b2t commands. Every
// sub-config is read from the environment on its own and may then be
// overlaid by a TOML or YAML file named by B2T_CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/go-sod/b2t/internal/database"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/featurize"
	"github.com/go-sod/b2t/internal/layout"
	"github.com/go-sod/b2t/internal/predict"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/setup"
)

var (
	_ setup.ExtractConfigProvider   = (*Config)(nil)
	_ setup.PredictorConfigProvider = (*Config)(nil)
	_ setup.StoreConfigProvider     = (*Config)(nil)
	_ setup.LayoutConfigProvider    = (*Config)(nil)
	_ setup.FileConfigProvider      = (*Config)(nil)
	_ setup.PredictConfigProvider   = (*Config)(nil)
	_ setup.FeaturizeConfigProvider = (*Config)(nil)
)

var ErrUnsupportedFormat = errors.New("unsupported config file format")

type Config struct {
	ConfigFile string `envconfig:"B2T_CONFIG_FILE" toml:"-" yaml:"-"`
	SrvAddr    string `envconfig:"B2T_ADDR" default:":8787" toml:"addr" yaml:"addr"`
	GRPCAddr   string `envconfig:"B2T_GRPC_ADDR" default:":8788" toml:"grpc_addr" yaml:"grpc_addr"`
	DebugAddr  string `envconfig:"B2T_DEBUG_ADDR" default:"localhost:8080" toml:"debug_addr" yaml:"debug_addr"`
	MaxConns   int    `envconfig:"B2T_MAX_CONNS" default:"256" toml:"max_conns" yaml:"max_conns"`
	Workers    int    `envconfig:"B2T_WORKERS" default:"0" toml:"workers" yaml:"workers"`

	Extract   extract.Config   `ignored:"true" toml:"extract" yaml:"extract"`
	Predictor predictor.Config `ignored:"true" toml:"predictor" yaml:"predictor"`
	Store     database.Config  `ignored:"true" toml:"store" yaml:"store"`
	Predict   predict.Config   `ignored:"true" toml:"predict" yaml:"predict"`
	Featurize featurize.Config `ignored:"true" toml:"featurize" yaml:"featurize"`
	Layout    layout.Config    `ignored:"true" toml:"-" yaml:"-"`
}

func (c *Config) ExtractConfig() *extract.Config {
	return &c.Extract
}

func (c *Config) PredictorConfig() *predictor.Config {
	return &c.Predictor
}

func (c *Config) StoreConfig() *database.Config {
	return &c.Store
}

func (c *Config) PredictConfig() *predict.Config {
	return &c.Predict
}

func (c *Config) FeaturizeConfig() *featurize.Config {
	return &c.Featurize
}

func (c *Config) LayoutConfig() *layout.Config {
	return &c.Layout
}

func (c *Config) File() string {
	return c.ConfigFile
}

// Overlay decodes the file at c.ConfigFile over the values already in c.
// Keys missing from the file keep their current value.
func (c *Config) Overlay() error {
	if c.ConfigFile == "" {
		return nil
	}
	return LoadFile(c.ConfigFile, c)
}

// LoadFile decodes path into v, picking the format from the extension.
func LoadFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

func (c *Config) WorkerCount() int {
	return c.Workers
}
