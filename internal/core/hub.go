package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/store"
)

// DefaultHistoryLimit bounds the history delivered on connect.
const DefaultHistoryLimit = 50

const (
	reasonBanned   = "you are banned"
	reasonClosed   = "connection closed by an administrator"
	reasonShutdown = "server shutting down"
)

// Options tune hub behaviour. Zero values pick defaults.
type Options struct {
	HistoryLimit int
	DefaultMute  time.Duration
	// NotifyMuted sends muted senders a system notice instead of dropping
	// their messages silently.
	NotifyMuted bool
	// Now overrides the clock used for mutes, bans and message timestamps.
	Now    func() time.Time
	Audit  store.ModerationStore
	Logger *zerolog.Logger
}

// Hub routes inbound chat lines and applies moderation. All state lives in
// the presence, moderation and whisper components, each guarded by its own
// lock; the hub itself holds no lock while talking to storage.
type Hub struct {
	presence *Presence
	mod      *Moderation
	whispers *Whispers
	history  store.MessageStore
	audit    store.ModerationStore

	historyLimit int
	notifyMuted  bool
	now          func() time.Time
	log          *zerolog.Logger
}

// NewHub creates a hub. A nil history store disables persistence.
func NewHub(history store.MessageStore, opts Options) *Hub {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	mod := NewModeration(now, opts.DefaultMute)
	return &Hub{
		presence:     NewPresence(mod),
		mod:          mod,
		whispers:     NewWhispers(),
		history:      history,
		audit:        opts.Audit,
		historyLimit: limit,
		notifyMuted:  opts.NotifyMuted,
		now:          now,
		log:          logger,
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	if n := h.kickAll(h.presence.All(), reasonShutdown); n > 0 {
		h.log.Info().Int("clients", n).Msg("disconnected clients on shutdown")
	}
}

// Register admits a client, sends it recent history and broadcasts the new
// roster. It returns ErrBanned for banned usernames; the caller must close
// the connection.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	if err := h.presence.Register(c); err != nil {
		h.log.Info().Err(err).Str("client_id", c.ID).Str("user", c.Name).Msg("registration rejected")
		return err
	}
	h.log.Info().
		Str("client_id", c.ID).
		Str("user", c.Name).
		Bool("admin", c.Admin).
		Bool("observer", c.Observer).
		Msg("client registered")

	h.sendHistory(ctx, c)
	h.broadcastRoster()
	return nil
}

// Unregister removes the client's binding and broadcasts the new roster.
func (h *Hub) Unregister(c *Client) {
	if !h.presence.Unregister(c.ID) {
		return
	}
	h.log.Info().Str("client_id", c.ID).Str("user", c.Name).Msg("client unregistered")
	h.broadcastRoster()
}

// Route classifies one inbound line from c and dispatches it.
func (h *Hub) Route(ctx context.Context, c *Client, text string) {
	if c.Closed() {
		h.log.Debug().Str("client_id", c.ID).Msg("dropping message from closed client")
		return
	}
	if h.mod.IsBanned(c.Name) {
		h.kickAll([]*Client{c}, reasonBanned)
		return
	}
	if h.mod.IsMuted(c.Name) {
		h.log.Debug().Str("user", c.Name).Msg("dropping message from muted user")
		if h.notifyMuted {
			c.Deliver(systemEvent("you are muted"))
		}
		return
	}

	cmd := ParseCommand(text, c.Admin)
	switch cmd.Kind {
	case CommandAdmin:
		h.handleAdmin(ctx, c, cmd)
	case CommandWhisper:
		h.deliverWhisper(EventWhisper, c.Name, cmd.Target, cmd.Body)
	case CommandReply:
		target, ok := h.whispers.ResolveReply(c.Name)
		if !ok {
			h.log.Debug().Str("user", c.Name).Msg("reply without prior whisper")
			return
		}
		h.deliverWhisper(EventReply, c.Name, target, cmd.Body)
	case CommandBroadcast:
		h.broadcastChat(ctx, c, cmd.Body)
	default:
		h.log.Debug().Str("user", c.Name).Msg("ignoring malformed message")
	}
}

// Mute silences target for d (default when d <= 0) and returns the applied
// duration.
func (h *Hub) Mute(ctx context.Context, actor, target string, d time.Duration) time.Duration {
	applied := h.mod.Mute(target, d)
	h.log.Info().Str("user", actor).Str("target", target).Dur("duration", applied).Msg("user muted")
	h.recordAction(ctx, &store.ModerationAction{
		Action:   store.ModerationMute,
		Actor:    actor,
		Target:   target,
		Duration: applied,
	})
	return applied
}

// Ban records a permanent ban on target and disconnects its live
// connections. It returns the ban record and the number of closed
// connections.
func (h *Hub) Ban(ctx context.Context, actor, target string) (BanRecord, int) {
	rec := h.mod.Ban(target, actor)
	n := h.kickAll(h.presence.ByName(target), reasonBanned)
	h.log.Info().Str("user", actor).Str("target", target).Int("closed", n).Msg("user banned")
	h.recordAction(ctx, &store.ModerationAction{
		Action: store.ModerationBan,
		Actor:  actor,
		Target: target,
		Token:  rec.Token,
	})
	return rec, n
}

// Close disconnects every live connection of target without banning it.
func (h *Hub) Close(ctx context.Context, actor, target string) int {
	n := h.kickAll(h.presence.ByName(target), reasonClosed)
	h.log.Info().Str("user", actor).Str("target", target).Int("closed", n).Msg("user disconnected")
	h.recordAction(ctx, &store.ModerationAction{
		Action: store.ModerationClose,
		Actor:  actor,
		Target: target,
	})
	return n
}

// IsMuted reports whether username is currently muted.
func (h *Hub) IsMuted(username string) bool { return h.mod.IsMuted(username) }

// IsBanned reports whether username is banned.
func (h *Hub) IsBanned(username string) bool { return h.mod.IsBanned(username) }

// Bans lists every ban record.
func (h *Hub) Bans() []BanRecord { return h.mod.Bans() }

// Roster returns the distinct online usernames.
func (h *Hub) Roster() []string { return h.presence.RosterSnapshot() }

// History returns up to limit recent broadcasts, oldest first.
func (h *Hub) History(ctx context.Context, limit int) ([]*store.Message, error) {
	if h.history == nil {
		return nil, nil
	}
	if limit <= 0 || limit > h.historyLimit {
		limit = h.historyLimit
	}
	msgs, err := h.history.RecentMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return msgs, nil
}

func (h *Hub) handleAdmin(ctx context.Context, c *Client, cmd Command) {
	h.mirror(&Event{Kind: EventSystem, From: c.Name, Text: cmd.Raw}, nil)

	if cmd.Action == AdminUnknown {
		h.log.Debug().Str("user", c.Name).Str("command", cmd.Raw).Msg("ignoring unknown admin command")
		return
	}
	if cmd.Invalid != "" {
		c.Deliver(systemEvent(cmd.Invalid))
		return
	}

	switch cmd.Action {
	case AdminClose:
		n := h.Close(ctx, c.Name, cmd.Target)
		c.Deliver(systemEvent(fmt.Sprintf("closed %d connection(s) of %s", n, cmd.Target)))
	case AdminMute:
		d := h.Mute(ctx, c.Name, cmd.Target, cmd.Duration)
		c.Deliver(systemEvent(fmt.Sprintf("muted %s for %s", cmd.Target, d)))
	case AdminBan:
		rec, _ := h.Ban(ctx, c.Name, cmd.Target)
		c.Deliver(&Event{Kind: EventBanToken, Target: rec.Username, Token: rec.Token})
		c.Deliver(systemEvent(fmt.Sprintf("banned %s", cmd.Target)))
	}
}

func (h *Hub) deliverWhisper(kind EventKind, from, to, body string) {
	h.whispers.RecordWhisper(from, to)

	ev := &Event{
		Kind: kind,
		Message: Message{
			From:      from,
			To:        to,
			Text:      body,
			CreatedAt: h.now(),
		},
	}
	primary := append(h.presence.ByName(from), h.presence.ByName(to)...)
	delivered := h.fanout(ev, primary)
	h.mirror(ev, delivered)
}

func (h *Hub) broadcastChat(ctx context.Context, c *Client, body string) {
	msg := Message{From: c.Name, Text: body, CreatedAt: h.now()}

	if h.history != nil {
		rec := &store.Message{Sender: msg.From, Body: msg.Text, CreatedAt: msg.CreatedAt}
		if err := h.history.SaveMessage(ctx, rec); err != nil {
			h.log.Warn().Err(err).Str("user", c.Name).Msg("failed to save message")
			c.Deliver(systemEvent("your message was delivered but could not be saved"))
		} else {
			msg.ID = rec.ID
		}
	}

	// Observers are ordinary recipients of broadcasts, so no mirror copy.
	h.fanout(&Event{Kind: EventChat, Message: msg}, h.presence.All())
}

func (h *Hub) sendHistory(ctx context.Context, c *Client) {
	msgs, err := h.History(ctx, h.historyLimit)
	if err != nil {
		h.log.Warn().Err(err).Str("client_id", c.ID).Msg("failed to load history")
		c.Deliver(systemEvent("message history is unavailable"))
		return
	}
	if msgs == nil {
		msgs = []*store.Message{}
	}
	c.Deliver(&Event{Kind: EventHistory, Messages: msgs})
}

func (h *Hub) broadcastRoster() {
	users := h.presence.RosterSnapshot()
	h.fanout(&Event{Kind: EventRoster, Users: users}, h.presence.All())
}

// kickAll force-disconnects clients, removes them from presence and
// broadcasts the roster once. It returns how many clients it closed.
func (h *Hub) kickAll(clients []*Client, reason string) int {
	n := 0
	for _, c := range clients {
		if c.Kick(reason) {
			n++
		}
		h.presence.Unregister(c.ID)
	}
	if n > 0 {
		h.broadcastRoster()
	}
	return n
}

func (h *Hub) recordAction(ctx context.Context, action *store.ModerationAction) {
	if h.audit == nil {
		return
	}
	action.CreatedAt = h.now()
	if err := h.audit.RecordModeration(ctx, action); err != nil {
		h.log.Warn().Err(err).Str("action", string(action.Action)).Str("target", action.Target).Msg("failed to record moderation action")
	}
}
