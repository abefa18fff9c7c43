package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/auth"
	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/proto"
	"github.com/vovakirdan/lobbychat/internal/utils"
)

// errKicked ends a session the hub disconnected on purpose.
var errKicked = errors.New("client kicked")

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub  *core.Hub
	auth *auth.Service
	cfg  *config.Config
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authService, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client, err := h.handshake(ctx, conn)
	if err != nil {
		h.log.Info().Err(err).Str("remote", r.RemoteAddr).Msg("ws handshake failed")
		return
	}

	if err := h.hub.Register(ctx, client); err != nil {
		code := core.ErrCodeBadRequest
		if errors.Is(err, core.ErrBanned) {
			code = core.ErrCodeBanned
		}
		h.reject(ctx, conn, code, err.Error())
		return
	}
	defer h.hub.Unregister(client)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	if errors.Is(err, errKicked) {
		return
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		s := websocket.CloseStatus(err)
		if s != websocket.StatusNormalClosure && s != websocket.StatusGoingAway {
			status = websocket.StatusInternalError
			reason = "connection error"
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) acceptOptions() *websocket.AcceptOptions {
	if len(h.cfg.OriginPatterns) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: h.cfg.OriginPatterns}
}

// handshake reads the mandatory hello and resolves the session identity.
// On failure the connection has already been closed.
func (h *WSHandler) handshake(ctx context.Context, conn *websocket.Conn) (*core.Client, error) {
	var inbound proto.Inbound
	if err := wsjson.Read(ctx, conn, &inbound); err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if inbound.Type != proto.InboundTypeHello {
		h.reject(ctx, conn, core.ErrCodeBadRequest, "hello required")
		return nil, fmt.Errorf("expected hello, got %q", inbound.Type)
	}

	var hello proto.HelloData
	if err := json.Unmarshal(inbound.Data, &hello); err != nil {
		h.reject(ctx, conn, core.ErrCodeBadRequest, "invalid hello payload")
		return nil, fmt.Errorf("decode hello: %w", err)
	}
	if hello.Protocol != 0 && hello.Protocol != proto.ProtocolVersion {
		h.reject(ctx, conn, core.ErrCodeUnsupportedVersion, fmt.Sprintf("protocol %d is not supported", hello.Protocol))
		return nil, fmt.Errorf("unsupported protocol %d", hello.Protocol)
	}

	id, err := h.auth.Identify(hello.User, hello.Token)
	if err != nil {
		code := core.ErrCodeUnauthorized
		if errors.Is(err, auth.ErrInvalidUsername) {
			code = core.ErrCodeBadRequest
		}
		h.reject(ctx, conn, code, err.Error())
		return nil, fmt.Errorf("identify: %w", err)
	}

	return core.NewClient(utils.NewID(), id.Username, id.Admin, id.Observer), nil
}

// reject writes a protocol error and closes with a policy violation.
func (h *WSHandler) reject(ctx context.Context, conn *websocket.Conn, code, msg string) {
	if err := wsjson.Write(ctx, conn, errorOutbound(code, msg)); err != nil {
		h.log.Debug().Err(err).Msg("write rejection")
	}
	conn.Close(websocket.StatusPolicyViolation, code)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.cfg.MessagesPerMinute)
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		switch inbound.Type {
		case proto.InboundTypeMsg:
			var msg proto.MsgData
			if err := json.Unmarshal(inbound.Data, &msg); err != nil {
				client.Deliver(errorEvent(core.ErrCodeBadRequest, "invalid msg payload"))
				continue
			}
			if !limiter.allow() {
				client.Deliver(errorEvent(core.ErrCodeRateLimited, "too many messages"))
				continue
			}
			h.hub.Route(ctx, client, msg.Text)
		case proto.InboundTypeHello:
			client.Deliver(errorEvent(core.ErrCodeBadRequest, "already introduced"))
		default:
			client.Deliver(errorEvent(core.ErrCodeBadRequest, "unknown message type"))
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if event.Kind == core.EventForcedDisconnect {
				// closeKicked writes it once Done fires.
				continue
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-client.Done():
			return h.closeKicked(ctx, conn, client)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// closeKicked flushes queued events, writes the forced_disconnect notice as
// the final frame and closes the socket with a policy violation.
func (h *WSHandler) closeKicked(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for flushed := false; !flushed; {
		select {
		case event := <-client.Events:
			if event.Kind == core.EventForcedDisconnect {
				continue
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				return err
			}
		default:
			flushed = true
		}
	}

	reason := client.CloseReason()
	notice := &core.Event{Kind: core.EventForcedDisconnect, Text: reason}
	if err := wsjson.Write(ctx, conn, outboundFromEvent(notice)); err != nil {
		return err
	}

	h.log.Info().Str("client_id", client.ID).Str("user", client.Name).Str("reason", reason).Msg("closing kicked client")
	if err := conn.Close(websocket.StatusPolicyViolation, reason); err != nil {
		h.log.Debug().Err(err).Str("client_id", client.ID).Msg("close kicked client")
	}
	return errKicked
}

func errorEvent(code, msg string) *core.Event {
	return &core.Event{Kind: core.EventError, Error: core.NewError(code, msg)}
}
