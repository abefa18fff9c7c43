package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.HistoryLimit != 50 || cfg.DefaultMute != time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Admins, []string{"DEV"}) {
		t.Fatalf("unexpected admins: %v", cfg.Admins)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9090"
history_backend: memory
history_limit: 20
default_mute: 30s
admins:
  - root
  - mod
observers:
  - auditor
notify_muted: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOBBYCHAT_ADDR", ":7070")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("env should override file, got %s", cfg.Addr)
	}
	if cfg.HistoryBackend != HistoryMemory || cfg.HistoryLimit != 20 {
		t.Fatalf("unexpected history settings: %+v", cfg)
	}
	if cfg.DefaultMute != 30*time.Second || !cfg.NotifyMuted {
		t.Fatalf("unexpected mute settings: %+v", cfg)
	}
	if !cfg.IsAdmin("root") || !cfg.IsAdmin("mod") || cfg.IsAdmin("DEV") {
		t.Fatalf("unexpected admins: %v", cfg.Admins)
	}
	if !cfg.IsObserver("auditor") {
		t.Fatalf("unexpected observers: %v", cfg.Observers)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("history_backend: floppy\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(&logger, path); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestValidateRequiresBackendURLs(t *testing.T) {
	cfg := Default()
	cfg.HistoryBackend = HistoryRedis
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected redis_url to be required")
	}
	cfg.RedisURL = "redis://localhost:6379/0"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.HistoryBackend = HistoryPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected postgres_url to be required")
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1", LogLevel: "debug", Admins: []string{"boss"}})

	if cfg.Addr != ":1" || cfg.LogLevel != "debug" || !cfg.IsAdmin("boss") {
		t.Fatalf("unexpected config after update: %+v", cfg)
	}
	if cfg.ShutdownTimeout != Default().ShutdownTimeout {
		t.Fatalf("zero values must not overwrite")
	}
}
