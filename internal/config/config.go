// Package config loads the YAML run configuration for a coxdev fit:
// tie-handling method, logging verbosity and input paths.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TieMethod selects how tied event times are handled by the deviance
// kernel.
type TieMethod string

const (
	TieBreslow TieMethod = "breslow"
	TieEfron   TieMethod = "efron"
)

// Config is the full structure of a coxdev run configuration file.
type Config struct {
	Data     DataConfig `yaml:"data"`
	Model    ModelConfig `yaml:"model"`
	LogLevel string     `yaml:"log_level"`
}

// DataConfig names the input CSV and the columns it carries.
type DataConfig struct {
	Path        string `yaml:"path"`
	HasStart    bool   `yaml:"has_start"`
	HasWeight   bool   `yaml:"has_weight"`
	EtaPath     string `yaml:"eta_path"` // optional: CSV column "eta" giving a fixed linear predictor
}

// ModelConfig selects the tie-handling convention.
type ModelConfig struct {
	Tie TieMethod `yaml:"tie"`
}

// Default returns the configuration used when no file is supplied:
// Efron ties, info-level logging, no fixed eta (all-zero).
func Default() Config {
	return Config{
		Model:    ModelConfig{Tie: TieEfron},
		LogLevel: "info",
	}
}

// Load reads and strictly decodes a YAML configuration file, starting
// from Default() so a file only needs to override what it cares about.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Efron reports whether this configuration selects the Efron tie
// correction, defaulting to true for any value other than "breslow".
func (c Config) Efron() bool {
	return c.Model.Tie != TieBreslow
}
