// Package config provides configuration management for the tradeplan application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultAppID is the data partition used when none is configured.
const DefaultAppID = "trade-plan-v0"

// Config holds all application configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	Share   ShareConfig   `mapstructure:"share"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AppConfig holds app-level configuration.
type AppConfig struct {
	// ID is the tenant/application id that partitions stored data.
	ID string `mapstructure:"id"`
	// AccountBalance is the baseline balance used for position sizing.
	AccountBalance float64 `mapstructure:"account_balance"`
}

// StoreConfig holds document-store configuration.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // "memory", "sqlite", "redis"
	SQLitePath string `mapstructure:"sqlite_path"`
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db"`
}

// ServerConfig holds the share/webhook server configuration. The plan
// feed runs on its own listener because it upgrades raw TCP connections.
type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	StreamAddr string `mapstructure:"stream_addr"`
}

// ShareConfig holds share-page configuration.
type ShareConfig struct {
	// AppURL is the public URL the share page links back to.
	AppURL string `mapstructure:"app_url"`
	// StaticImageURL is the fallback card image for plan-id embeds.
	StaticImageURL string `mapstructure:"static_image_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradeplan"
	}
	return filepath.Join(home, ".config", "tradeplan")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// No config file yet; write a template and continue on defaults.
		if err := writeTemplate(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.id", DefaultAppID)
	v.SetDefault("app.account_balance", 10000.0)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.sqlite_path", filepath.Join(DefaultConfigDir(), "tradeplan.db"))
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.stream_addr", ":8081")
	v.SetDefault("share.app_url", "https://tradeplan.example.com")
	v.SetDefault("share.static_image_url", "https://tradeplan.example.com/image.png")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEPLAN_APP_ID"); v != "" {
		cfg.App.ID = v
	}
	if v := os.Getenv("TRADEPLAN_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("TRADEPLAN_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("TRADEPLAN_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, sqlite or redis)", c.Store.Backend)
	}

	if c.App.ID == "" {
		return fmt.Errorf("app.id must not be empty")
	}
	if c.App.AccountBalance < 0 {
		return fmt.Errorf("app.account_balance must be non-negative")
	}

	return nil
}
