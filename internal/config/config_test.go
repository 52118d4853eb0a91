package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.SnapshotPath != "data/contracts.json" {
		t.Errorf("snapshotPath = %q", cfg.Storage.SnapshotPath)
	}
	if cfg.Import.MaxFileSize != 10485760 {
		t.Errorf("maxFileSize = %d, want 10MB", cfg.Import.MaxFileSize)
	}
	if cfg.Import.SessionTTL != 30*time.Minute {
		t.Errorf("sessionTTL = %v, want 30m", cfg.Import.SessionTTL)
	}
	if !cfg.Rate.Enabled {
		t.Error("rate limiting should default to enabled")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("STORAGE_SNAPSHOT_PATH", "/var/lib/reg/contracts.json")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("readTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.SnapshotPath != "/var/lib/reg/contracts.json" {
		t.Errorf("snapshotPath = %q", cfg.Storage.SnapshotPath)
	}
	if cfg.Rate.Enabled {
		t.Error("rate limiting should be disabled")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "70000"},
		{"non-numeric port", "SERVER_PORT", "abc"},
		{"bad duration", "SERVER_READ_TIMEOUT", "soon"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"zero file size", "IMPORT_MAX_FILE_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	c := ServerConfig{Host: "0.0.0.0", Port: 8080}
	if got := c.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", got)
	}

	c.Host = ""
	if got := c.Addr(); got != ":8080" {
		t.Errorf("Addr() with empty host = %q", got)
	}
}

func TestStringMasksNothingSensitive(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := cfg.String()
	for _, want := range []string{"Server", "Storage", "Import", "Logging"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %s section: %s", want, s)
		}
	}
}
