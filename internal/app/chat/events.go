/*
Package chat contains the realtime messaging core.

This file defines the wire protocol: JSON event envelopes exchanged over the
persistent WebSocket connection and the payload shapes for each event.
*/
package chat

import "encoding/json"

// Client → server events.
const (
	// EventIdentify announces the durable user identity behind a connection.
	EventIdentify = "identify"

	// EventTyping signals that the identified user started typing.
	EventTyping = "typing"

	// EventStopTyping signals that the identified user stopped typing. The
	// client emits it automatically after a 1000 ms quiet interval, via a
	// timer rearmed on every keystroke.
	EventStopTyping = "stopTyping"
)

// Bidirectional events.
const (
	// EventChatMessage carries a chat message: inbound it triggers a send,
	// outbound it delivers the persisted, decrypted message object.
	EventChatMessage = "chatMessage"
)

// Server → client events.
const (
	// EventDisplayTyping tells recipients to show a typing indicator.
	EventDisplayTyping = "displayTyping"

	// EventHideTyping tells recipients to hide the typing indicator.
	EventHideTyping = "hideTyping"

	// EventLeadAssigned is the one-off push from the CRM lead workflow.
	EventLeadAssigned = "leadAssigned"

	// EventError reports a per-message failure (e.g., empty content) back to
	// the connection that caused it.
	EventError = "error"
)

// Envelope is the inbound frame format: an event name plus a raw payload
// decoded per event type.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutboundEnvelope is the outbound frame format.
type OutboundEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// IdentifyPayload carries the user identifier announced on connect.
type IdentifyPayload struct {
	UserID string `json:"userId"`
}

// ChatMessagePayload is the inbound chatMessage body.
type ChatMessagePayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
	IsGroup  bool   `json:"isGroup"`
}

// TypingPayload is the inbound typing / stopTyping body. The sender is
// inferred from the connection's identified user.
type TypingPayload struct {
	Receiver string `json:"receiver"`
	IsGroup  bool   `json:"isGroup"`
}

// TypingEventPayload is the outbound displayTyping / hideTyping body.
type TypingEventPayload struct {
	Sender string `json:"sender"`
}

// LeadAssignedPayload is the outbound leadAssigned body.
type LeadAssignedPayload struct {
	Message string          `json:"message"`
	Lead    json.RawMessage `json:"lead,omitempty"`
}

// ErrorPayload is the outbound error body.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
