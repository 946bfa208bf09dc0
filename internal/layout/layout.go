// Package layout resolves where pipeline inputs and outputs live on disk.
package layout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

var ErrMissingInputs = errors.New("missing input files")

type Config struct {
	DataDir      string `env:"B2T_DATA_DIR,default=data"`
	ProcessedDir string `env:"B2T_PROCESSED_DIR,default=processed"`
	ModelDir     string `env:"B2T_MODEL_DIR,default=models"`
	OutputDir    string `env:"B2T_OUTPUT_DIR,default=outputs"`
}

// FromEnv reads the layout from the process environment.
func FromEnv(ctx context.Context) (*Config, error) {
	return FromLookuper(ctx, envconfig.OsLookuper())
}

func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return nil, fmt.Errorf("process layout env: %w", err)
	}
	return &cfg, nil
}

// Under returns a layout rooted at dir with the default sub-directory names.
func Under(dir string) *Config {
	return &Config{
		DataDir:      filepath.Join(dir, "data"),
		ProcessedDir: filepath.Join(dir, "processed"),
		ModelDir:     filepath.Join(dir, "models"),
		OutputDir:    filepath.Join(dir, "outputs"),
	}
}

// Input returns the dataset file of split, preferring the plain file and
// falling back to its gzipped form when only that exists.
func (c *Config) Input(split string) string {
	p := filepath.Join(c.DataDir, "data_"+split+".jsonl")
	if _, err := os.Stat(p); err != nil {
		if _, gzErr := os.Stat(p + ".gz"); gzErr == nil {
			return p + ".gz"
		}
	}
	return p
}

func (c *Config) Features(split string) string {
	return filepath.Join(c.ProcessedDir, "features_"+split+".db")
}

func (c *Config) Model() string {
	return filepath.Join(c.ModelDir, "model.db")
}

func (c *Config) Predictions(split string) string {
	return filepath.Join(c.OutputDir, "predictions_"+split+".csv")
}

func (c *Config) Neighbors(split string) string {
	return filepath.Join(c.OutputDir, "neighbors_"+split+".csv")
}

func (c *Config) Summary(split string) string {
	return filepath.Join(c.OutputDir, "metrics_"+split+".json")
}

// CheckInputs reports every missing dataset file in a single error.
func (c *Config) CheckInputs(splits ...string) error {
	var missing []string
	for _, split := range splits {
		p := c.Input(split)
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingInputs, strings.Join(missing, ", "))
	}
	return nil
}

// Ensure creates the directories the pipeline writes to.
func (c *Config) Ensure() error {
	for _, dir := range []string{c.ProcessedDir, c.ModelDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
