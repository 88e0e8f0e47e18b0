package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"--port", "9090", "--timezone", "UTC"})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.BooksDir != "./books" {
		t.Errorf("Expected books dir './books', got '%s'", cfg.BooksDir)
	}
	if cfg.DefaultView != "content" {
		t.Errorf("Expected default view 'content', got '%s'", cfg.DefaultView)
	}
	if cfg.SyncPeriod() != 300*time.Second {
		t.Errorf("Expected sync period 300s, got %v", cfg.SyncPeriod())
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.UsesIndex() {
		t.Error("Expected no capture index by default")
	}
	if cfg.Location != time.UTC {
		t.Errorf("Expected UTC location, got %v", cfg.Location)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsOverrides(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--db-path", "/tmp/index.db",
		"--base-url", "https://www.example.com",
		"--api-key", "test-key",
		"--timezone", "Europe/Berlin",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.UsesIndex() || cfg.DBPath != "/tmp/index.db" {
		t.Errorf("Expected capture index at /tmp/index.db, got '%s'", cfg.DBPath)
	}
	if cfg.BaseUrl != "https://www.example.com" {
		t.Errorf("Expected base URL 'https://www.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.Location.String() != "Europe/Berlin" {
		t.Errorf("Expected Europe/Berlin location, got %v", cfg.Location)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadArgsInvalid(t *testing.T) {
	if _, err := LoadArgs([]string{"--sync-interval", "0"}); err == nil {
		t.Error("Expected error for zero sync interval")
	}

	cfg, err := LoadArgs([]string{"--timezone", "Not/AZone"})
	if err != nil {
		t.Fatalf("Expected invalid timezone to fall back, got: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Expected UTC fallback, got %v", cfg.Location)
	}
}
