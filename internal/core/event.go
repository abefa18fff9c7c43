package core

import "github.com/vovakirdan/lobbychat/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoster carries the current set of online usernames.
	EventRoster EventKind = iota
	// EventHistory delivers recent broadcasts to a freshly registered client.
	EventHistory
	// EventChat is a public broadcast.
	EventChat
	// EventWhisper is a directed message.
	EventWhisper
	// EventReply is a directed message addressed via /reply.
	EventReply
	// EventSystem is a free-text notice.
	EventSystem
	// EventForcedDisconnect precedes a server-initiated close.
	EventForcedDisconnect
	// EventBanToken hands the issuing administrator the token of a new ban.
	EventBanToken
	// EventError notifies clients about a domain error.
	EventError
)

var eventKindNames = [...]string{
	EventRoster:           "roster",
	EventHistory:          "history",
	EventChat:             "chat",
	EventWhisper:          "whisper",
	EventReply:            "reply",
	EventSystem:           "system",
	EventForcedDisconnect: "forced_disconnect",
	EventBanToken:         "ban_token",
	EventError:            "error",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Message  Message          // chat, whisper, reply
	Messages []*store.Message // history
	Users    []string         // roster
	Text     string           // system notice, forced-disconnect reason
	From     string           // actor of a mirrored system entry
	Target   string           // ban token subject
	Token    string           // ban token
	Mirrored bool             // delivered through the admin mirror
	Error    *CoreError
}

// mirrorCopy returns the event as delivered to an observer that is not a
// primary recipient.
func (e *Event) mirrorCopy() *Event {
	cp := *e
	cp.Mirrored = true
	return &cp
}

func systemEvent(text string) *Event {
	return &Event{Kind: EventSystem, Text: text}
}
