package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crmchat/internal/app/chat"
)

// MessageStore is the Postgres implementation of chat.MessageStore.
// Messages are append-only; no update or delete statements exist here.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore constructs a MessageStore over the shared pool.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

const insertMessageSQL = `
INSERT INTO messages (sender, receiver, receiver_kind, content)
VALUES ($1, $2, $3, $4)
RETURNING id::text, created_at`

// Insert persists a new message. The database assigns the identifier and the
// creation timestamp, so ordering follows arrival at the persistence layer.
func (s *MessageStore) Insert(ctx context.Context, sender string, rcpt chat.Recipient, ciphertext string) (chat.Message, error) {
	msg := chat.Message{
		Sender:       sender,
		Receiver:     rcpt.ID,
		ReceiverKind: rcpt.Kind,
		Content:      ciphertext,
	}

	err := s.pool.QueryRow(ctx, insertMessageSQL, sender, rcpt.ID, string(rcpt.Kind), ciphertext).
		Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

const directHistorySQL = `
SELECT id::text, sender, receiver, receiver_kind, content, created_at
FROM messages
WHERE receiver_kind = 'user'
  AND ((sender = $1 AND receiver = $2) OR (sender = $2 AND receiver = $1))
ORDER BY created_at ASC`

// DirectHistory returns all direct messages between the unordered pair {a, b}.
func (s *MessageStore) DirectHistory(ctx context.Context, a, b string) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx, directHistorySQL, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to query direct history: %w", err)
	}

	return collectMessages(rows)
}

const groupHistorySQL = `
SELECT id::text, sender, receiver, receiver_kind, content, created_at
FROM messages
WHERE receiver_kind = 'group' AND receiver = $1
ORDER BY created_at ASC`

// GroupHistory returns all messages addressed to the group.
func (s *MessageStore) GroupHistory(ctx context.Context, groupID string) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx, groupHistorySQL, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group history: %w", err)
	}

	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]chat.Message, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (chat.Message, error) {
		var m chat.Message
		err := row.Scan(&m.ID, &m.Sender, &m.Receiver, &m.ReceiverKind, &m.Content, &m.Timestamp)
		return m, err
	})
}
