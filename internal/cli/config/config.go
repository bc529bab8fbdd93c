// Package config resolves CLI settings from flags, environment and ~/.restwell.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultServer is used when nothing else sets the server address.
const DefaultServer = "http://localhost:8080"

// Config stores CLI configuration.
type Config struct {
	Server string `mapstructure:"server"`
}

// New returns a viper instance reading RESTWELL_* variables and
// ~/.restwell.yaml. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName(".restwell")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetEnvPrefix("RESTWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("server", DefaultServer)
	return v
}

// Load reads the config file if present and unmarshals the result.
// Precedence is flag, then environment, then file, then default.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if strings.TrimSpace(cfg.Server) == "" {
		cfg.Server = DefaultServer
	}
	return &cfg, nil
}
