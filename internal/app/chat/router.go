/*
Package chat contains the realtime messaging core.

This file defines the Router, which validates, encrypts, persists, and fans
out chat messages to the correct set of live connections.
*/
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"crmchat/internal/app/cipher"
	"crmchat/internal/app/presence"
	"crmchat/internal/pkg/errs"
	"crmchat/internal/pkg/logx"
	"crmchat/internal/pkg/metrics"
)

// corruptPlaceholder replaces the content of a stored message that failed
// decryption, so one bad row cannot hide an entire conversation.
const corruptPlaceholder = "[message unreadable]"

// Router is the message router. It owns the send path end to end:
// persistence is durable before any push, and pushes are fire-and-forget —
// an offline recipient reconciles via a history fetch, never via a retry.
type Router struct {
	store    MessageStore
	groups   GroupDirectory
	codec    *cipher.Codec
	registry *presence.Registry
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewRouter constructs a Router. The metrics argument may be nil.
func NewRouter(store MessageStore, groups GroupDirectory, codec *cipher.Codec, registry *presence.Registry, m *metrics.Metrics) *Router {
	return &Router{
		store:    store,
		groups:   groups,
		codec:    codec,
		registry: registry,
		metrics:  m,
		logger:   logx.Logger().With().Str("component", "Router").Logger(),
	}
}

// Send validates and persists a message, then pushes the decrypted copy to
// every resolved recipient connection and echoes it to the originating
// connection. The returned Message is exactly what a later history fetch
// would yield for the same record.
//
// origin may be nil (e.g., a send arriving outside a live connection); the
// echo is then skipped but delivery to recipients proceeds unchanged.
func (rt *Router) Send(ctx context.Context, sender string, rcpt Recipient, plaintext string, origin presence.Conn) (Message, error) {
	if strings.TrimSpace(plaintext) == "" {
		return Message{}, errs.NewError(errs.ErrEmptyMessage)
	}

	ciphertext, err := rt.codec.Encrypt(plaintext)
	if err != nil {
		rt.logger.Error().Err(err).Msg("Failed to encrypt message content")
		return Message{}, errs.NewError(errs.ErrUnknown, err)
	}

	msg, err := rt.store.Insert(ctx, sender, rcpt, ciphertext)
	if err != nil {
		rt.logger.Error().Err(err).Str("sender", sender).Msg("Failed to persist message")
		return Message{}, errs.NewError(errs.ErrUnknown, err)
	}
	rt.metrics.RecordMessageSent()

	// Round-trip the persisted copy so the echoed object matches what a
	// later history fetch returns.
	plain, err := rt.codec.Decrypt(msg.Content)
	if err != nil {
		rt.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to decrypt just-written message")
		return Message{}, err
	}
	msg.Content = plain

	recipients, err := rt.recipients(ctx, rcpt)
	if err != nil {
		// A vanished group yields zero recipients, not a failed send; the
		// message is already durable and the sender still gets the echo.
		if errors.Is(err, errs.NewError(errs.ErrGroupNotFound)) {
			rt.logger.Warn().Str("group_id", rcpt.ID).Msg("Fan-out target group not found, delivering echo only")
			recipients = nil
		} else {
			rt.logger.Error().Err(err).Str("receiver", rcpt.ID).Msg("Failed to resolve recipients")
			return Message{}, errs.NewError(errs.ErrUnknown, err)
		}
	}

	for _, userID := range recipients {
		conn, ok := rt.registry.Resolve(userID)
		if !ok || conn == origin {
			continue
		}
		rt.push(conn, EventChatMessage, msg, userID)
	}

	// The originating connection always gets exactly one echo, whether or
	// not the sender's identifier resolved above.
	if origin != nil {
		rt.push(origin, EventChatMessage, msg, sender)
	}

	return msg, nil
}

// History returns all direct messages between the unordered pair {a, b},
// ascending by timestamp and decrypted.
func (rt *Router) History(ctx context.Context, a, b string) ([]Message, error) {
	msgs, err := rt.store.DirectHistory(ctx, a, b)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return rt.decryptAll(msgs), nil
}

// GroupHistory returns all messages addressed to the group, ascending by
// timestamp and decrypted.
func (rt *Router) GroupHistory(ctx context.Context, groupID string) ([]Message, error) {
	msgs, err := rt.store.GroupHistory(ctx, groupID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return rt.decryptAll(msgs), nil
}

// recipients resolves the recipient set for a message or typing signal. The
// sender is not excluded here: group members include the sender, and the
// push loop skips only the originating connection itself.
func (rt *Router) recipients(ctx context.Context, rcpt Recipient) ([]string, error) {
	switch rcpt.Kind {
	case KindGroup:
		return rt.groups.Members(ctx, rcpt.ID)
	default:
		return []string{rcpt.ID}, nil
	}
}

// push queues one event on a connection. Delivery is best-effort: a failed
// push is counted and logged, never retried.
func (rt *Router) push(conn presence.Conn, event string, payload any, userID string) {
	if err := conn.Push(event, payload); err != nil {
		rt.metrics.RecordPushDropped()
		rt.logger.Warn().Err(err).Str("user_id", userID).Str("event", event).Msg("Dropped realtime push")
		return
	}
	rt.metrics.RecordPushDelivered()
}

// decryptAll decrypts a fetched history in place. A record that fails
// decryption is a data-integrity fault: it is logged, counted, and replaced
// with a placeholder instead of aborting the whole fetch.
func (rt *Router) decryptAll(msgs []Message) []Message {
	for i := range msgs {
		plain, err := rt.codec.Decrypt(msgs[i].Content)
		if err != nil {
			rt.metrics.RecordCorruptRecord()
			rt.logger.Error().Err(err).Str("message_id", msgs[i].ID).Msg("Skipping undecryptable message record")
			msgs[i].Content = corruptPlaceholder
			continue
		}
		msgs[i].Content = plain
	}

	return msgs
}
