/*
Package chat contains the realtime messaging core.

This file defines the TypingRelay, which forwards ephemeral typing signals to
the same recipient set a message fan-out would target. Nothing here is
persisted or acknowledged.
*/
package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"crmchat/internal/app/presence"
	"crmchat/internal/pkg/errs"
	"crmchat/internal/pkg/logx"
	"crmchat/internal/pkg/metrics"
)

// TypingRelay forwards typing and stop-typing signals.
type TypingRelay struct {
	groups   GroupDirectory
	registry *presence.Registry
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewTypingRelay constructs a TypingRelay. The metrics argument may be nil.
func NewTypingRelay(groups GroupDirectory, registry *presence.Registry, m *metrics.Metrics) *TypingRelay {
	return &TypingRelay{
		groups:   groups,
		registry: registry,
		metrics:  m,
		logger:   logx.Logger().With().Str("component", "TypingRelay").Logger(),
	}
}

// NotifyTyping pushes a displayTyping event carrying the typing user's
// identifier to every resolved recipient except the originating connection.
func (t *TypingRelay) NotifyTyping(ctx context.Context, from string, rcpt Recipient, origin presence.Conn) {
	t.relay(ctx, EventDisplayTyping, from, rcpt, origin)
}

// NotifyStopTyping is the symmetric hideTyping push.
func (t *TypingRelay) NotifyStopTyping(ctx context.Context, from string, rcpt Recipient, origin presence.Conn) {
	t.relay(ctx, EventHideTyping, from, rcpt, origin)
}

func (t *TypingRelay) relay(ctx context.Context, event string, from string, rcpt Recipient, origin presence.Conn) {
	var recipients []string

	switch rcpt.Kind {
	case KindGroup:
		members, err := t.groups.Members(ctx, rcpt.ID)
		if err != nil {
			if !errors.Is(err, errs.NewError(errs.ErrGroupNotFound)) {
				t.logger.Warn().Err(err).Str("group_id", rcpt.ID).Msg("Failed to resolve typing recipients")
			}
			return
		}
		recipients = members
	default:
		recipients = []string{rcpt.ID}
	}

	payload := TypingEventPayload{Sender: from}

	for _, userID := range recipients {
		conn, ok := t.registry.Resolve(userID)
		if !ok || conn == origin {
			continue
		}

		if err := conn.Push(event, payload); err != nil {
			// Transient signal, nothing to recover.
			continue
		}
		t.metrics.RecordTypingEvent()
	}
}
