package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.StateTTL != 24*time.Hour {
		t.Fatalf("expected 24h state ttl, got %v", cfg.StateTTL)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected no redis by default, got %s", cfg.RedisURL)
	}
	if cfg.SaveRetries != 3 {
		t.Fatalf("expected 3 save retries, got %d", cfg.SaveRetries)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WOODLAND_ADDR", ":9090")
	t.Setenv("WOODLAND_MAX_GAME_AGE", "2h30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.Addr)
	}
	if cfg.MaxGameAge != 150*time.Minute {
		t.Fatalf("expected 2h30m, got %v", cfg.MaxGameAge)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WOODLAND_DB_PATH=/tmp/from-file.db\nWOODLAND_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv sets variables for the whole process
	t.Setenv("WOODLAND_DB_PATH", "")
	os.Unsetenv("WOODLAND_DB_PATH")
	t.Setenv("WOODLAND_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-file.db" {
		t.Fatalf("expected db path from file, got %s", cfg.DBPath)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected environment to win over file, got %s", cfg.LogLevel)
	}
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file ignored, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"WOODLAND_STATE_TTL", "forever"},
		{"WOODLAND_SAVE_RETRIES", "-1"},
		{"WOODLAND_SAVE_RETRIES", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "parse env:") {
				t.Fatalf("expected parse env prefix, got %v", err)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	log, err := Config{LogLevel: "debug", LogFormat: "json"}.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", log.Formatter)
	}

	if _, err := (Config{LogLevel: "loud", LogFormat: "text"}).Logger(); err == nil {
		t.Fatal("expected bad level rejected")
	}
	if _, err := (Config{LogLevel: "info", LogFormat: "xml"}).Logger(); err == nil {
		t.Fatal("expected bad format rejected")
	}
}
