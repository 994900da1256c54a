package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Remote API
	APIURL      string        // base URL of the repertoire service
	HTTPTimeout time.Duration // per request timeout (default: 30s)

	// Display
	Language string // "en" or "pt-BR"

	// Watch mode
	RefreshSchedule string // cron spec (default: "@every 5m")
	ServerPort      string

	// Paths
	ConfigDir    string
	DatabaseFile string // $CONFIG_DIR/session.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("REPERTOIRE_URL", "http://127.0.0.1:8000")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("LANGUAGE", "en")
	v.SetDefault("REFRESH_SCHEDULE", "@every 5m")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	configDir := v.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "repertoire")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		APIURL:      v.GetString("REPERTOIRE_URL"),
		HTTPTimeout: time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,

		Language: v.GetString("LANGUAGE"),

		RefreshSchedule: v.GetString("REFRESH_SCHEDULE"),
		ServerPort:      v.GetString("SERVER_PORT"),

		ConfigDir:    configDir,
		DatabaseFile: filepath.Join(configDir, "session.db"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("REPERTOIRE_URL must be an absolute URL, got %q", c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err)
	}
	return nil
}
