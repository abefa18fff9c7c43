package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello = "hello"
	InboundTypeMsg   = "msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Event names carried in Outbound.Event.
const (
	EventRoster           = "roster"
	EventHistory          = "history"
	EventChat             = "chat"
	EventWhisper          = "whisper"
	EventReply            = "reply"
	EventSystem           = "system"
	EventForcedDisconnect = "forced_disconnect"
	EventBanToken         = "ban_token"
)

// HelloData is sent by the client to introduce itself.
type HelloData struct {
	User     string `json:"user"`
	Token    string `json:"token,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// MsgData is one chat line from the client. Commands such as /whisper are
// carried as plain text.
type MsgData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a room broadcast.
type EventMessage struct {
	ID   int64  `json:"id,omitempty"`
	User string `json:"user"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// EventRosterData lists distinct online usernames.
type EventRosterData struct {
	Users []string `json:"users"`
}

// EventHistoryData carries recent broadcasts, oldest first.
type EventHistoryData struct {
	Messages []EventMessage `json:"messages"`
}

// EventPrivate is a whisper or reply.
type EventPrivate struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Text     string `json:"text"`
	TS       int64  `json:"ts"`
	Mirrored bool   `json:"mirrored,omitempty"`
}

// EventSystemData is a notice from the server or a mirrored admin command.
type EventSystemData struct {
	Text     string `json:"text"`
	From     string `json:"from,omitempty"`
	Mirrored bool   `json:"mirrored,omitempty"`
}

// EventForcedDisconnectData precedes a server-side close.
type EventForcedDisconnectData struct {
	Reason string `json:"reason"`
}

// EventBanTokenData is sent to the admin who issued a ban.
type EventBanTokenData struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
