// Package config loads the unist-is command configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/syntax-tree/unist-util-is/internal/ingest"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrUnknownLanguage = errors.New("unknown language")
)

const defaultLogLevel = "info"

// Config holds the settings shared by all commands. Flags override it.
type Config struct {
	// Rules is the rule file (.hcl, .json, .yaml).
	Rules string `mapstructure:"rules"`
	// Database is the SQLite report path; empty disables the report.
	Database string `mapstructure:"database"`
	// Selector is the default selector for rules that have none.
	Selector string `mapstructure:"selector"`
	// Language forces the grammar used by lint instead of detecting it
	// from the file extension.
	Language string `mapstructure:"language"`
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig loads configuration from file and environment variables.
// Without configPath, unist-is.yaml is looked up in the working directory
// and its absence is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	viperCfg.SetDefault("rules", "")
	viperCfg.SetDefault("database", "")
	viperCfg.SetDefault("selector", "")
	viperCfg.SetDefault("language", "")
	viperCfg.SetDefault("log_level", defaultLogLevel)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("unist-is")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix("UNIST_IS")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config
	if err := viperCfg.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Language != "" {
		if _, ok := ingest.LanguageByName(c.Language); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownLanguage, c.Language)
		}
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}
