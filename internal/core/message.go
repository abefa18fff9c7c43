package core

import "time"

// Message is the domain model for a routed chat message.
type Message struct {
	ID        int64
	From      string
	To        string // whisper/reply target, empty for broadcasts
	Text      string
	CreatedAt time.Time
}
