// Package config loads runtime settings for a pybump invocation.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the runtime settings. Values come from CLI flags and
// PYBUMP_* environment variables; pybump reads no config file.
type Config struct {
	// Manifest is the pyproject.toml path, relative to the working
	// directory unless absolute.
	Manifest string `mapstructure:"manifest"`
	// Verbose enables debug diagnostics on stderr.
	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by environment or flags. A value that cannot be decoded
// into the Config field type is an error, not a silent default.
func Load() (Config, error) {
	viper.SetDefault("manifest", "pyproject.toml")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}
