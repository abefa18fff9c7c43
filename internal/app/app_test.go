package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/config"
)

func TestAppRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "lobbychat.db")
	cfg.HistoryBackend = config.HistoryMemory
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	a, err := New(context.Background(), &cfg, &logger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("app did not stop after cancel")
	}
}

func TestOpenHistoryRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryBackend = "carrier-pigeon"

	if _, err := openHistory(context.Background(), &cfg, nil); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
