package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/auth"
	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/store"
	"github.com/vovakirdan/lobbychat/internal/store/memory"
	"github.com/vovakirdan/lobbychat/internal/store/postgres"
	"github.com/vovakirdan/lobbychat/internal/store/redis"
	"github.com/vovakirdan/lobbychat/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/lobbychat/internal/transport/http"
)

// connectTimeout bounds dialing external history backends at startup.
const connectTimeout = 10 * time.Second

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	history         store.HistoryStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	history, err := openHistory(ctx, cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Info().Str("backend", cfg.HistoryBackend).Int("limit", cfg.HistoryLimit).Msg("history store ready")

	hub := core.NewHub(history, core.Options{
		HistoryLimit: cfg.HistoryLimit,
		DefaultMute:  cfg.DefaultMute,
		NotifyMuted:  cfg.NotifyMuted,
		Audit:        st,
		Logger:       logger,
	})

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	if !jwtConfig.Enabled() {
		logger.Warn().Msg("jwt_secret is empty: hello names are trusted and account endpoints are disabled")
	}
	authService := auth.NewService(st, jwtConfig, cfg, hub)

	server := transporthttp.NewServer(hub, authService, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		history:         history,
		log:             logger,
	}, nil
}

// openHistory picks the broadcast history backend. The sqlite backend shares
// the main store.
func openHistory(ctx context.Context, cfg *config.Config, st *sqlite.SQLiteStore) (store.HistoryStore, error) {
	switch cfg.HistoryBackend {
	case config.HistorySQLite:
		return st, nil
	case config.HistoryMemory:
		return memory.New(cfg.HistoryCapacity), nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.HistoryBackend {
	case config.HistoryRedis:
		hs, err := redis.New(dialCtx, cfg.RedisURL, cfg.HistoryCapacity)
		if err != nil {
			return nil, fmt.Errorf("init redis history: %w", err)
		}
		return hs, nil
	case config.HistoryPostgres:
		hs, err := postgres.New(dialCtx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres history: %w", err)
		}
		return hs, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.hub.Run(hubCtx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.history != nil && a.history != store.HistoryStore(a.store) {
		if err := a.history.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close history store")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
