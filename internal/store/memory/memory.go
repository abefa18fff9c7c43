package memory

import (
	"context"
	"sync"

	"github.com/vovakirdan/lobbychat/internal/store"
)

// DefaultCapacity is the number of messages retained when none is given.
const DefaultCapacity = 500

// MessageStore keeps the newest messages in a fixed-size ring.
type MessageStore struct {
	mu     sync.RWMutex
	ring   []store.Message
	next   int // slot for the next append
	size   int
	nextID int64
}

var _ store.HistoryStore = (*MessageStore)(nil)

// New creates a ring holding at most capacity messages.
func New(capacity int) *MessageStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MessageStore{ring: make([]store.Message, capacity)}
}

// SaveMessage appends msg, evicting the oldest entry when full.
func (s *MessageStore) SaveMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	s.ring[s.next] = *msg
	s.next = (s.next + 1) % len(s.ring)
	if s.size < len(s.ring) {
		s.size++
	}
	return nil
}

// RecentMessages returns at most limit of the newest messages, oldest first.
func (s *MessageStore) RecentMessages(_ context.Context, limit int) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.size {
		limit = s.size
	}
	out := make([]*store.Message, 0, limit)
	start := s.next - limit
	for i := range limit {
		idx := (start + i + len(s.ring)) % len(s.ring)
		msg := s.ring[idx]
		out = append(out, &msg)
	}
	return out, nil
}

// Close is a no-op.
func (s *MessageStore) Close() error { return nil }
