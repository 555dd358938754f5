package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("Missing config file should not be an error: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Server.StatsInterval != 5*time.Second {
		t.Errorf("Expected 5s stats interval, got %v", cfg.Server.StatsInterval)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected info level, got %s", cfg.Log.Level)
	}
	if cfg.Database.Enabled || cfg.Database.Driver != "gorm" {
		t.Errorf("Unexpected database defaults %+v", cfg.Database)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  http_address: ":7000"
database:
  enabled: true
  driver: pq
  postgres:
    port: 6543
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.HTTPAddress != ":7000" {
		t.Errorf("Expected :7000, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Server.RPCAddress != ":9090" {
		t.Errorf("Expected default rpc address, got %s", cfg.Server.RPCAddress)
	}
	if !cfg.Database.Enabled || cfg.Database.Driver != "pq" || cfg.Database.Postgres.Port != 6543 {
		t.Errorf("Unexpected database config %+v", cfg.Database)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_HTTP_ADDRESS", ":6000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.HTTPAddress != ":6000" {
		t.Errorf("Expected env override :6000, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected env override debug, got %s", cfg.Log.Level)
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("Expected a parse error")
	}
}
