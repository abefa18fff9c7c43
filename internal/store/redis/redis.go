package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vovakirdan/lobbychat/internal/store"
)

const (
	defaultKey      = "lobbychat:history"
	defaultCapacity = 500
)

// MessageStore keeps history in a capped Redis list, newest at the tail.
type MessageStore struct {
	client   *goredis.Client
	key      string
	seqKey   string
	capacity int64
}

var _ store.HistoryStore = (*MessageStore)(nil)

type entry struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// New connects to the Redis server at url and verifies the connection.
func New(ctx context.Context, url string, capacity int) (*MessageStore, error) {
	if url == "" {
		return nil, errors.New("redis: url is required")
	}
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := goredis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewWithClient(c, defaultKey, capacity), nil
}

// NewWithClient wraps an existing client; key namespaces the list.
func NewWithClient(c *goredis.Client, key string, capacity int) *MessageStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MessageStore{
		client:   c,
		key:      key,
		seqKey:   key + ":seq",
		capacity: int64(capacity),
	}
}

// SaveMessage appends msg and trims the list to capacity.
func (s *MessageStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	id, err := s.client.Incr(ctx, s.seqKey).Result()
	if err != nil {
		return fmt.Errorf("redis: next id: %w", err)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	data, err := json.Marshal(entry{ID: id, Sender: msg.Sender, Body: msg.Body, CreatedAt: msg.CreatedAt.UTC()})
	if err != nil {
		return fmt.Errorf("redis: encode message: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, -s.capacity, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: append message: %w", err)
	}

	msg.ID = id
	return nil
}

// RecentMessages returns at most limit of the newest messages, oldest first.
func (s *MessageStore) RecentMessages(ctx context.Context, limit int) ([]*store.Message, error) {
	if limit <= 0 {
		return []*store.Message{}, nil
	}
	raw, err := s.client.LRange(ctx, s.key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read history: %w", err)
	}

	out := make([]*store.Message, 0, len(raw))
	for _, item := range raw {
		var e entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("redis: decode message: %w", err)
		}
		out = append(out, &store.Message{ID: e.ID, Sender: e.Sender, Body: e.Body, CreatedAt: e.CreatedAt})
	}
	return out, nil
}

// Close releases the client.
func (s *MessageStore) Close() error {
	return s.client.Close()
}
