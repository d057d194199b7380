// Package config loads settings for the georadius command line tool.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/LdDl/georadius/internal/logging"
)

const envPrefix = "GEORADIUS"

// Config is the full configuration tree
type Config struct {
	Log       logging.Config  `mapstructure:"log"`
	Selection SelectionConfig `mapstructure:"selection"`
	Data      DataConfig      `mapstructure:"data"`
}

// SelectionConfig tunes the radius selection
type SelectionConfig struct {
	// Segments is the number of vertices used to approximate the circle
	Segments int `mapstructure:"segments"`
	// Criterion is "intersecta" or "contem"
	Criterion string `mapstructure:"criterion"`
}

// DataConfig points at feature collections and the applied filters
type DataConfig struct {
	HubsFile        string   `mapstructure:"hubs_file"`
	PeripheriesFile string   `mapstructure:"peripheries_file"`
	Region          string   `mapstructure:"region"`
	Products        []string `mapstructure:"products"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("selection.segments", 128)
	v.SetDefault("selection.criterion", "intersecta")
	v.SetDefault("data.region", "ALL")
	// Declared so AutomaticEnv can see them on Unmarshal
	v.SetDefault("data.hubs_file", "")
	v.SetDefault("data.peripheries_file", "")
	v.SetDefault("data.products", []string{})
}

// Load reads configPath (may be empty) and merges GEORADIUS_* environment overrides
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "Can't read config file '%s'", configPath)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted
func (cfg *Config) Validate() error {
	if cfg.Selection.Segments < 4 {
		return errors.Errorf("selection.segments must be at least 4, got %d", cfg.Selection.Segments)
	}
	switch cfg.Selection.Criterion {
	case "intersecta", "contem":
	default:
		return errors.Errorf("selection.criterion must be 'intersecta' or 'contem', got '%s'", cfg.Selection.Criterion)
	}
	return nil
}
