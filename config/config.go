// Package config loads CLI defaults from APPBUNDLE_* environment variables.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Prefix is prepended to every variable name, for example APPBUNDLE_OUT_DIR.
const Prefix = "APPBUNDLE"

// Config holds the settings the command line can override.
type Config struct {
	// OutDir is where bundles are written when -out is not given.
	OutDir  string `envconfig:"OUT_DIR" default:"target/bundle/osx"`
	Workers int    `envconfig:"WORKERS" default:"1"`
	Strict  bool   `envconfig:"STRICT" default:"false"`
	// LogConfig is embedded so its variables share the top-level prefix.
	LogConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads the configuration from the environment.
//
// Returns:
//   - *Config: The configuration with defaults applied.
//   - error: An error if a variable does not parse.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if cfg.Workers < 1 {
		return nil, errors.Errorf("%s_WORKERS must be at least 1, got %d", Prefix, cfg.Workers)
	}
	return &cfg, nil
}
