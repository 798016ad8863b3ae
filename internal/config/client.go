package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ClientConfig holds the student client configuration.
type ClientConfig struct {
	DBPath             string `toml:"db_path"`
	SyncURL            string `toml:"sync_url"`
	SyncTimeoutSeconds int    `toml:"sync_timeout_seconds"`
	Debug              bool   `toml:"debug"`
}

// LoadClient builds the client configuration from defaults, then the TOML
// file at path if path is not empty, then environment variables. A
// non-empty environment variable wins over the file.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		DBPath:             "./data/lexpublica.db",
		SyncTimeoutSeconds: 10,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read client config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse client config %s: %w", path, err)
		}
	}

	if isEnvSet("LEXPUBLICA_DB_PATH") {
		cfg.DBPath = getEnv("LEXPUBLICA_DB_PATH", cfg.DBPath)
	}
	if isEnvSet("LEXPUBLICA_SYNC_URL") {
		cfg.SyncURL = getEnv("LEXPUBLICA_SYNC_URL", cfg.SyncURL)
	}
	if isEnvSet("SYNC_TIMEOUT") {
		cfg.SyncTimeoutSeconds = getEnvInt("SYNC_TIMEOUT", cfg.SyncTimeoutSeconds)
	}
	if isEnvSet("LEXPUBLICA_DEBUG") {
		cfg.Debug = getEnvBool("LEXPUBLICA_DEBUG", cfg.Debug)
	}

	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.SyncURL = strings.TrimSpace(cfg.SyncURL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *ClientConfig) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if c.SyncTimeoutSeconds <= 0 {
		return fmt.Errorf("sync_timeout_seconds must be > 0")
	}
	return nil
}

// Offline reports whether no sync gateway is configured.
func (c *ClientConfig) Offline() bool {
	return c.SyncURL == ""
}

// SyncTimeout bounds each call to the sync gateway.
func (c *ClientConfig) SyncTimeout() time.Duration {
	return time.Duration(c.SyncTimeoutSeconds) * time.Second
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// isEnvSet reports whether key holds a non-blank value.
func isEnvSet(key string) bool {
	return strings.TrimSpace(os.Getenv(key)) != ""
}
