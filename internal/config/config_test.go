package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("KV_REST_API_URL", "")
	t.Setenv("KV_REST_API_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SyncConfigured() {
		t.Error("Expected sync to be unconfigured without KV parameters")
	}
	if cfg.Timeout.KVRequest != 10*time.Second {
		t.Errorf("Expected 10s KV timeout, got %v", cfg.Timeout.KVRequest)
	}
}

func TestLoad_SyncNeedsBothParameters(t *testing.T) {
	t.Setenv("KV_REST_API_URL", "https://kv.example.com")
	t.Setenv("KV_REST_API_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SyncConfigured() {
		t.Error("Expected sync unconfigured with only the URL set")
	}

	t.Setenv("KV_REST_API_TOKEN", "token")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.SyncConfigured() {
		t.Error("Expected sync configured with URL and token")
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("KV_REQUEST_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Error("Expected error for zero timeout")
	}
}

func TestLoadClient_Env(t *testing.T) {
	t.Setenv("LEXPUBLICA_DB_PATH", "/tmp/env.db")
	t.Setenv("LEXPUBLICA_SYNC_URL", "")
	t.Setenv("SYNC_TIMEOUT", "3")

	cfg, err := LoadClient("")
	if err != nil {
		t.Fatalf("LoadClient failed: %v", err)
	}
	if cfg.DBPath != "/tmp/env.db" || !cfg.Offline() || cfg.SyncTimeout() != 3*time.Second {
		t.Errorf("Unexpected env config %+v", cfg)
	}
}

func TestLoadClient_EnvOverridesFile(t *testing.T) {
	t.Setenv("LEXPUBLICA_DB_PATH", "/tmp/env.db")
	t.Setenv("LEXPUBLICA_SYNC_URL", "")
	t.Setenv("SYNC_TIMEOUT", "3")
	t.Setenv("LEXPUBLICA_DEBUG", "")

	path := filepath.Join(t.TempDir(), "client.toml")
	content := "db_path = \"/tmp/file.db\"\nsync_url = \"http://localhost:8080\"\nsync_timeout_seconds = 7\ndebug = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("LoadClient failed: %v", err)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("Expected env db path to win over the file, got %q", cfg.DBPath)
	}
	if cfg.SyncTimeout() != 3*time.Second {
		t.Errorf("Expected env timeout to win over the file, got %v", cfg.SyncTimeout())
	}
	if cfg.Offline() || cfg.SyncURL != "http://localhost:8080" {
		t.Errorf("Expected blank env sync URL to keep the file value, got %q", cfg.SyncURL)
	}
	if !cfg.Debug {
		t.Error("Expected debug from the file")
	}
}

func TestLoadClient_Errors(t *testing.T) {
	t.Setenv("LEXPUBLICA_DB_PATH", "")

	if _, err := LoadClient(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("db_path = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadClient(path); err == nil {
		t.Error("Expected validation error for empty db_path")
	}
}
