// Package config holds the environment-backed defaults of the wordbpe command.
// Command-line flags override them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Names of the environment variables read by Load.
const (
	EnvVocabSize = "WORDBPE_VOCAB_SIZE"
	EnvOutputDir = "WORDBPE_OUTPUT_DIR"
	EnvSPMModel  = "WORDBPE_SPM_MODEL"
)

// Defaults used when the environment variables are not set.
const (
	DefaultVocabSize = 1024
	DefaultOutputDir = "./wordbpe-out"
)

// Config is the resolved configuration.
type Config struct {
	// VocabSize is the target vocabulary size for training, set via WORDBPE_VOCAB_SIZE.
	VocabSize int
	// OutputDir is where run artifacts are written, set via WORDBPE_OUTPUT_DIR.
	OutputDir string
	// SPMModel is the SentencePiece "tokenizer.model" used as the comparison baseline, set via WORDBPE_SPM_MODEL.
	SPMModel string
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap describes every environment variable along with its resolved value.
func (c *Config) AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		EnvVocabSize: {EnvVocabSize, c.VocabSize, fmt.Sprintf("Target vocabulary size for training (default %d)", DefaultVocabSize)},
		EnvOutputDir: {EnvOutputDir, c.OutputDir, fmt.Sprintf("Directory where run outputs are written (default %q)", DefaultOutputDir)},
		EnvSPMModel:  {EnvSPMModel, c.SPMModel, "Path to a SentencePiece tokenizer.model used as comparison baseline"},
	}
}

// Values returns the resolved value of every environment variable as a string.
func (c *Config) Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range c.AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	c := &Config{
		VocabSize: DefaultVocabSize,
		OutputDir: DefaultOutputDir,
	}
	if vs := clean(EnvVocabSize); vs != "" {
		val, err := strconv.Atoi(vs)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s=%q", EnvVocabSize, vs)
		}
		if val <= 0 {
			return nil, errors.Errorf("invalid %s=%q, it must be greater than zero", EnvVocabSize, vs)
		}
		c.VocabSize = val
	}
	if dir := clean(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}
	c.SPMModel = clean(EnvSPMModel)
	return c, nil
}
