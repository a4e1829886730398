// Package config loads CLI configuration from flags, CASTORE_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the
// environment: root -> CASTORE_ROOT.
const EnvPrefix = "CASTORE"

// Config is the CLI configuration.
type Config struct {
	// Root is the store root. Empty lets the library fall back to the
	// platform temp directory.
	Root string `mapstructure:"root"`

	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=trace debug info warn warning error"`

	// LogFormat selects the logrus formatter.
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=text json"`

	// Concurrency bounds the verify worker pool.
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=256"`

	// StagingGrace is how old a staging file must be before sweep deletes it.
	StagingGrace time.Duration `mapstructure:"staging_grace" validate:"gte=0"`

	// CompressionLevel is used by commands that emit zstd output.
	CompressionLevel string `mapstructure:"compression_level" validate:"required,oneof=fastest default better best"`
}

var validate = validator.New()

// SetDefaults registers defaults on v. Every key needs one so that
// AutomaticEnv overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("concurrency", 4)
	v.SetDefault("staging_grace", time.Hour)
	v.SetDefault("compression_level", "default")
}

// Load reads configuration into a Config. configFile may be empty, in which
// case config.yaml is looked up in Dir(); a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.CompressionLevel = strings.ToLower(cfg.CompressionLevel)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and reports the first failure.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config: %s: validation failed on '%s' tag (value: %v)", e.Field(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Dir is the directory searched for config.yaml.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "castore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "castore")
	}
	return ".castore"
}
