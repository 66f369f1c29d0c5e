// Package config loads and validates bot configuration from the environment
// and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Worker limits accepted for WORKERS.
const (
	MinWorkers = 1
	MaxWorkers = 64
)

// Config holds bot configuration.
type Config struct {
	// BotToken authenticates with the Bot API.
	BotToken string `mapstructure:"BOT_TOKEN"`
	// MetricsAddr is where /metrics is served. Empty disables the server.
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	// AnonymousPrefix is prepended to relayed media captions. Text bodies are
	// relayed unchanged.
	AnonymousPrefix string `mapstructure:"ANONYMOUS_PREFIX"`
	// AdminChatID receives reports and new-user notices.
	AdminChatID int64 `mapstructure:"ADMIN_CHAT_ID"`
	// Workers is the number of event workers.
	Workers int `mapstructure:"WORKERS"`
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int `mapstructure:"POLL_TIMEOUT"`
	// Debug enables debug logging and Bot API request tracing.
	Debug bool `mapstructure:"DEBUG"`
}

// Load reads envFile (if present), then builds and validates Config from the
// environment. Env vars override the file. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}

	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("ADMIN_CHAT_ID", 0)
	v.SetDefault("WORKERS", 4)
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("POLL_TIMEOUT", 60)
	v.SetDefault("ANONYMOUS_PREFIX", "👤 Anonymous: ")
	v.SetDefault("DEBUG", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("config: BOT_TOKEN must be set")
	}
	if c.AdminChatID == 0 {
		return errors.New("config: ADMIN_CHAT_ID must be set")
	}
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("config: WORKERS must be between %d and %d", MinWorkers, MaxWorkers)
	}
	if c.PollTimeout <= 0 {
		return errors.New("config: POLL_TIMEOUT must be positive")
	}
	return nil
}
