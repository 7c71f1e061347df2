// Package config holds the trainer settings read from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/hickeroar/nbtrain/bayes"
)

var (
	errMissingDatasource = errors.New("datasource is required")
	errMissingColumn     = errors.New("column name is empty")
	errInvalidWorkers    = errors.New("workers must be at least 1")
	errMissingModelDir   = errors.New("model directory is required")
)

// Tokenizer configures how document text is split into words.
type Tokenizer struct {
	Stem      bool   `yaml:"stem"`
	Language  string `yaml:"language"`
	StripHTML bool   `yaml:"strip_html"`
}

// Config is the full trainer configuration.
type Config struct {
	Datasource   string    `yaml:"datasource"`
	TableName    string    `yaml:"table_name"`
	IDColumn     string    `yaml:"id_column"`
	TextColumn   string    `yaml:"text_column"`
	CodeColumn   string    `yaml:"code_column"`
	UseMajorCode bool      `yaml:"use_major_code"`
	Model        string    `yaml:"model"`
	OutputVocab  string    `yaml:"output_vocab"`
	Smoothing    string    `yaml:"smoothing"`
	Workers      int       `yaml:"workers"`
	LogLevel     string    `yaml:"log_level"`
	Tokenizer    Tokenizer `yaml:"tokenizer"`
}

// Default returns the configuration used when neither file nor flag sets a
// value.
func Default() *Config {
	return &Config{
		IDColumn:   "id",
		TextColumn: "text",
		CodeColumn: "code",
		Model:      "Model_Dir",
		Smoothing:  bayes.LaplaceFallback.Name(),
		Workers:    runtime.NumCPU(),
		LogLevel:   "info",
		Tokenizer: Tokenizer{
			Stem:      true,
			Language:  "english",
			StripHTML: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are an
// error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that would make training impossible.
func (c *Config) Validate() error {
	if c.Datasource == "" {
		return errMissingDatasource
	}
	if c.Model == "" {
		return errMissingModelDir
	}
	for name, value := range map[string]string{
		"id_column":   c.IDColumn,
		"text_column": c.TextColumn,
		"code_column": c.CodeColumn,
	} {
		if value == "" {
			return fmt.Errorf("%w: %s", errMissingColumn, name)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: %d", errInvalidWorkers, c.Workers)
	}
	if _, err := bayes.LookupSmoother(c.Smoothing); err != nil {
		return err
	}
	return nil
}
