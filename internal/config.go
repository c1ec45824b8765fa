package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client configuration. Values come from the YAML config
// file, overridden by environment, overridden by flags (applied by the
// caller).
type Config struct {
	APIBaseURL          string `yaml:"api_base_url"`
	DBPath              string `yaml:"db_path"`
	QueryTimeoutSeconds int    `yaml:"query_timeout_seconds"`
	HistoryWindow       int    `yaml:"history_window"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		APIBaseURL:          "http://localhost:8000",
		DBPath:              filepath.Join(home, ".beaver", "beaver.db"),
		QueryTimeoutSeconds: int(DefaultQueryTimeout / time.Second),
		HistoryWindow:       MaxHistoryMessages,
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "beaver", "config.yaml")
}

// LoadConfig loads configuration from path, or from the default location
// when path is empty. A missing file yields defaults; BEAVER_API_URL
// overrides the backend address either way.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			LogDebug("No config file at %s, using defaults", path)
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if url := os.Getenv("BEAVER_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}

	if cfg.QueryTimeoutSeconds <= 0 {
		cfg.QueryTimeoutSeconds = int(DefaultQueryTimeout / time.Second)
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = MaxHistoryMessages
	}

	return cfg, nil
}

// QueryTimeout returns the configured timeout as a duration.
func (c Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}
