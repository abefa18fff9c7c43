package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/auth"
	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/store"
)

// NewServer builds an HTTP server with health, websocket and REST routes.
// audit may be nil.
func NewServer(hub *core.Hub, authService *auth.Service, audit store.ModerationStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, authService, audit, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers every route on a gin engine.
func NewRouter(hub *core.Hub, authService *auth.Service, audit store.ModerationStore, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	r.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	apiHandlers := NewAPIHandlers(authService, logger)
	adminHandlers := NewAdminHandlers(hub, audit, logger)

	api := r.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	protected := api.Group("", AuthMiddleware(authService, logger), AdminMiddleware(logger))
	protected.GET("/roster", adminHandlers.Roster)
	protected.GET("/history", adminHandlers.History)

	admin := protected.Group("/admin")
	admin.GET("/bans", adminHandlers.Bans)
	admin.GET("/actions", adminHandlers.Actions)
	admin.POST("/mute", adminHandlers.Mute)
	admin.POST("/ban", adminHandlers.Ban)
	admin.POST("/close", adminHandlers.Close)

	return r
}
