package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/bookline/bookline_backend/pkg/constants"
)

var GlobalConf *Config

// ReadConfig loads the config file from configPath and layers
// BOOKLINE_* environment variables on top, so BOOKLINE_DATABASE_HOST
// overrides database.host.
func ReadConfig(configPath string) (*Config, error) {
	viper.SetConfigName(constants.ConfigName)
	viper.SetConfigType(constants.ConfigFormat)
	viper.AddConfigPath(configPath)

	viper.SetEnvPrefix("BOOKLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is acceptable. Other read errors are too when
		// the deployment is configured through env vars instead.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && os.Getenv("BOOKLINE_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %v", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustReadConfig panics on error and records the result in GlobalConf.
func MustReadConfig(path string) *Config {
	cfg, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}
	GlobalConf = cfg
	return cfg
}
