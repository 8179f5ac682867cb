/*
Package chat contains the realtime messaging core: the message router, the
typing signal relay, and the WebSocket client lifecycle.

This file defines the Message entity and the Recipient tagged union that
disambiguates direct messages from group broadcasts.
*/
package chat

import (
	"context"
	"time"
)

// RecipientKind discriminates the two legs of the Recipient union.
type RecipientKind string

const (
	// KindUser marks a direct message to a single user identifier.
	KindUser RecipientKind = "user"

	// KindGroup marks a broadcast to every member of a group.
	KindGroup RecipientKind = "group"
)

// Recipient is the tagged union {User(id), Group(id)}. Centralizing the kind
// here keeps the direct-vs-group branch in one place instead of spreading an
// isGroup flag through every call site.
type Recipient struct {
	Kind RecipientKind
	ID   string
}

// UserRecipient builds a direct-message recipient.
func UserRecipient(userID string) Recipient {
	return Recipient{Kind: KindUser, ID: userID}
}

// GroupRecipient builds a group-broadcast recipient.
func GroupRecipient(groupID string) Recipient {
	return Recipient{Kind: KindGroup, ID: groupID}
}

// RecipientOf converts the wire-level receiver/isGroup pair into a Recipient.
func RecipientOf(receiverID string, isGroup bool) Recipient {
	if isGroup {
		return GroupRecipient(receiverID)
	}
	return UserRecipient(receiverID)
}

// Message is a persisted chat message. Messages are immutable once created:
// the router is the only writer and no edit or unsend operation exists.
// Content holds ciphertext at rest and plaintext only in memory while a send
// or history fetch is being processed.
type Message struct {
	ID           string        `json:"id"`
	Sender       string        `json:"sender"`
	Receiver     string        `json:"receiver"`
	ReceiverKind RecipientKind `json:"receiverKind"`
	Content      string        `json:"content"`
	Timestamp    time.Time     `json:"timestamp"`
}

// MessageStore is the persistence boundary for messages. The Postgres
// implementation lives in internal/app/db.
type MessageStore interface {
	// Insert persists a new message with a server-assigned ID and timestamp
	// and returns the stored record, content still encrypted.
	Insert(ctx context.Context, sender string, rcpt Recipient, ciphertext string) (Message, error)

	// DirectHistory returns all direct messages between the unordered pair
	// {a, b}, ascending by timestamp.
	DirectHistory(ctx context.Context, a, b string) ([]Message, error)

	// GroupHistory returns all messages addressed to the group, ascending by timestamp.
	GroupHistory(ctx context.Context, groupID string) ([]Message, error)
}

// GroupDirectory resolves a group identifier to its member set. Lookups for a
// nonexistent group fail with the GroupNotFound business error.
type GroupDirectory interface {
	Members(ctx context.Context, groupID string) ([]string, error)
}
