package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vovakirdan/lobbychat/internal/store"
)

// Schema creates the history table. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id         BIGSERIAL PRIMARY KEY,
	sender     TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// MessageStore keeps history in PostgreSQL.
type MessageStore struct {
	pool *pgxpool.Pool
}

var _ store.HistoryStore = (*MessageStore)(nil)

// New connects to dsn, verifies the connection and applies the schema.
func New(ctx context.Context, dsn string) (*MessageStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return &MessageStore{pool: pool}, nil
}

// SaveMessage appends msg and assigns its ID.
func (s *MessageStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (sender, body, created_at) VALUES ($1, $2, $3) RETURNING id`,
		msg.Sender, msg.Body, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("postgres: insert message: %w", err)
	}
	return nil
}

// RecentMessages returns at most limit of the newest messages, oldest first.
func (s *MessageStore) RecentMessages(ctx context.Context, limit int) ([]*store.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender, body, created_at FROM (
			SELECT id, sender, body, created_at
			FROM chat_messages
			ORDER BY id DESC
			LIMIT $1
		) recent
		ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query messages: %w", err)
	}
	defer rows.Close()

	out := make([]*store.Message, 0, limit)
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan message: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *MessageStore) Close() error {
	s.pool.Close()
	return nil
}
