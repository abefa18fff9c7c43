package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/proto"
	"github.com/vovakirdan/lobbychat/internal/store"
)

const defaultActionsLimit = 100

// AdminHandlers exposes roster, history and moderation over REST.
type AdminHandlers struct {
	hub   *core.Hub
	audit store.ModerationStore
	log   *zerolog.Logger
}

// NewAdminHandlers creates admin handlers. audit may be nil.
func NewAdminHandlers(hub *core.Hub, audit store.ModerationStore, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{hub: hub, audit: audit, log: logger}
}

// TargetRequest names the user a moderation action applies to.
type TargetRequest struct {
	User string `json:"user" binding:"required"`
}

// MuteRequest mutes a user for a number of seconds; zero picks the default.
type MuteRequest struct {
	User    string `json:"user" binding:"required"`
	Seconds int    `json:"seconds" binding:"gte=0"`
}

// MuteResponse reports the applied mute.
type MuteResponse struct {
	User    string `json:"user"`
	Seconds int    `json:"seconds"`
}

// BanResponse represents a ban record.
type BanResponse struct {
	User      string `json:"user"`
	Token     string `json:"token"`
	BannedBy  string `json:"banned_by"`
	CreatedAt string `json:"created_at"`
	Closed    int    `json:"closed,omitempty"`
}

// CloseResponse reports how many connections were closed.
type CloseResponse struct {
	User   string `json:"user"`
	Closed int    `json:"closed"`
}

// ActionResponse represents a moderation audit entry.
type ActionResponse struct {
	ID         int64  `json:"id"`
	Action     string `json:"action"`
	Actor      string `json:"actor"`
	Target     string `json:"target"`
	Token      string `json:"token,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Roster lists distinct online usernames.
// GET /api/roster
func (h *AdminHandlers) Roster(c *gin.Context) {
	c.JSON(http.StatusOK, proto.EventRosterData{Users: h.hub.Roster()})
}

// History returns recent broadcasts.
// GET /api/history?limit=N
func (h *AdminHandlers) History(c *gin.Context) {
	limit, ok := queryLimit(c, core.DefaultHistoryLimit)
	if !ok {
		return
	}
	msgs, err := h.hub.History(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, proto.EventHistoryData{Messages: messagesFromStore(msgs)})
}

// Bans lists ban records.
// GET /api/admin/bans
func (h *AdminHandlers) Bans(c *gin.Context) {
	bans := h.hub.Bans()
	response := make([]BanResponse, 0, len(bans))
	for _, b := range bans {
		response = append(response, banResponse(b, 0))
	}
	c.JSON(http.StatusOK, response)
}

// Actions lists the moderation audit log, newest first.
// GET /api/admin/actions?limit=N
func (h *AdminHandlers) Actions(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusOK, []ActionResponse{})
		return
	}
	limit, ok := queryLimit(c, defaultActionsLimit)
	if !ok {
		return
	}
	actions, err := h.audit.ListModeration(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list moderation actions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ActionResponse, 0, len(actions))
	for _, a := range actions {
		response = append(response, ActionResponse{
			ID:         a.ID,
			Action:     string(a.Action),
			Actor:      a.Actor,
			Target:     a.Target,
			Token:      a.Token,
			DurationMS: a.Duration.Milliseconds(),
			CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, response)
}

// Mute silences a user.
// POST /api/admin/mute
func (h *AdminHandlers) Mute(c *gin.Context) {
	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	d := h.hub.Mute(c.Request.Context(), c.GetString(ContextKeyUsername), req.User, time.Duration(req.Seconds)*time.Second)
	c.JSON(http.StatusOK, MuteResponse{User: req.User, Seconds: int(d / time.Second)})
}

// Ban permanently bans a user and closes their connections.
// POST /api/admin/ban
func (h *AdminHandlers) Ban(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	rec, closed := h.hub.Ban(c.Request.Context(), c.GetString(ContextKeyUsername), req.User)
	c.JSON(http.StatusOK, banResponse(rec, closed))
}

// Close disconnects a user's live connections.
// POST /api/admin/close
func (h *AdminHandlers) Close(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	closed := h.hub.Close(c.Request.Context(), c.GetString(ContextKeyUsername), req.User)
	c.JSON(http.StatusOK, CloseResponse{User: req.User, Closed: closed})
}

func banResponse(b core.BanRecord, closed int) BanResponse {
	return BanResponse{
		User:      b.Username,
		Token:     b.Token,
		BannedBy:  b.BannedBy,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		Closed:    closed,
	}
}

// queryLimit parses ?limit=; it writes a 400 and returns false on bad input.
func queryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		return 0, false
	}
	return n, true
}
