// Package config loads runtime settings from an optional YAML file and
// LOGSIFT_* environment variables, with sensible defaults for everything.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultModel is the fallback LLM model when none is specified.
const DefaultModel = "google/gemini-3-flash-preview"

// Config holds the runtime settings of the pipeline.
type Config struct {
	DatabasePath  string  `mapstructure:"database_path"`
	LogLevel      string  `mapstructure:"log_level"`
	BatchSize     int     `mapstructure:"batch_size"`     // entries per store insert batch
	MinSimilarity float64 `mapstructure:"min_similarity"` // grouping threshold in [0,1]
	Contamination float64 `mapstructure:"contamination"`  // expected anomalous fraction in (0,1)
	CacheSize     int     `mapstructure:"cache_size"`
	CacheTTLSec   int     `mapstructure:"cache_ttl_sec"`
	Model         string  `mapstructure:"model"`
}

// Load reads configuration from the given YAML file (optional; pass "" to
// search the usual locations), then overlays LOGSIFT_* environment
// variables on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("logsift")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.logsift")
		v.AddConfigPath(".")
	}

	v.SetDefault("database_path", "logsift.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("batch_size", 100)
	v.SetDefault("min_similarity", 0.7)
	v.SetDefault("contamination", 0.1)
	v.SetDefault("cache_size", 128)
	v.SetDefault("cache_ttl_sec", 3600)
	v.SetDefault("model", "")

	v.SetEnvPrefix("LOGSIFT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicit path that does not exist is an error; a missing
			// file in the search path is not.
			if path != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ResolveModel returns the model to use, checking the explicit value first,
// then the MODEL_NAME environment variable, and finally the default.
func ResolveModel(model string) string {
	if model != "" {
		return model
	}
	if env := os.Getenv("MODEL_NAME"); env != "" {
		return env
	}
	return DefaultModel
}
