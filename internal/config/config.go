// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the sync gateway server configuration.
type Config struct {
	Port        string
	FrontendURL string
	CORSOrigins []string
	KV          KVConfig
	Timeout     TimeoutConfig
}

// KVConfig locates the remote key-value service. Sync is enabled only when
// both fields are set.
type KVConfig struct {
	URL   string
	Token string
}

// TimeoutConfig bounds calls made by the server.
type TimeoutConfig struct {
	KVRequest   time.Duration
	HealthCheck time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		KV: KVConfig{
			URL:   strings.TrimSpace(getEnv("KV_REST_API_URL", "")),
			Token: strings.TrimSpace(getEnv("KV_REST_API_TOKEN", "")),
		},
		Timeout: TimeoutConfig{
			KVRequest:   time.Duration(getEnvInt("KV_REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
			HealthCheck: 5 * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Timeout.KVRequest <= 0 {
		return fmt.Errorf("KV_REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS cannot be empty")
	}
	return nil
}

// SyncConfigured reports whether both KV connection parameters are present.
// Without them the server runs in offline mode.
func (c *Config) SyncConfigured() bool {
	return c.KV.URL != "" && c.KV.Token != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
