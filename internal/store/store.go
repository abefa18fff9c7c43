package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Message is a persisted public broadcast.
type Message struct {
	ID        int64
	Sender    string
	Body      string
	CreatedAt time.Time
}

// ModerationActionKind names an administrative action.
type ModerationActionKind string

const (
	ModerationClose ModerationActionKind = "close"
	ModerationMute  ModerationActionKind = "mute"
	ModerationBan   ModerationActionKind = "ban"
)

// ModerationAction is an audit record of an executed administrative command.
type ModerationAction struct {
	ID        int64
	Action    ModerationActionKind
	Actor     string
	Target    string
	Token     string        // ban token, empty for other actions
	Duration  time.Duration // mute duration, zero for other actions
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// MessageStore is the append-only public history log.
// Implementations must be safe for concurrent use.
type MessageStore interface {
	// SaveMessage appends a broadcast and assigns its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// RecentMessages returns at most limit of the newest messages, oldest first.
	RecentMessages(ctx context.Context, limit int) ([]*Message, error)
}

// ModerationStore keeps the audit trail of administrative actions.
type ModerationStore interface {
	// RecordModeration appends an action and assigns its ID.
	RecordModeration(ctx context.Context, action *ModerationAction) error

	// ListModeration returns at most limit of the newest actions, oldest first.
	ListModeration(ctx context.Context, limit int) ([]*ModerationAction, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore
	ModerationStore

	// Close closes the underlying database connection.
	Close() error
}

// HistoryStore is a MessageStore that owns a closable backend.
type HistoryStore interface {
	MessageStore
	Close() error
}
