// Package config loads server and tracker settings from an optional config
// file plus EMISSIONSENSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vjc2026/EmissionSense/internal/util"
)

// Config holds the runtime settings shared by the server and the tracker CLI.
type Config struct {
	Addr     string `mapstructure:"addr"`
	DBPath   string `mapstructure:"db_path"`
	StateDir string `mapstructure:"state_dir"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration with precedence: explicit path, then the
// EMISSIONSENSE_CONFIG file, then environment variables over built-in
// defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":5000")
	v.SetDefault("db_path", "data/emissionsense.db")
	v.SetDefault("state_dir", util.EnvOrDefault("XDG_STATE_HOME", ".emissionsense"))
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("EMISSIONSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = util.EnvOrDefault("EMISSIONSENSE_CONFIG", "")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("emissionsense")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/emissionsense")
	}

	// A config file is optional when discovered; an explicitly named one
	// must exist and parse.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
