/*
Package chat contains the realtime messaging core.

This file defines the Client struct, representing an active WebSocket
connection. It manages the connection lifecycle, the message communication
loops (ReadPump and WritePump), and dispatch of inbound protocol events to
the router, the typing relay, and the presence registry.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"crmchat/internal/app/directory"
	"crmchat/internal/app/presence"
	"crmchat/internal/pkg/errs"
	"crmchat/internal/pkg/logx"
	"crmchat/internal/pkg/metrics"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) for message content.
	MaxContentBytes = 5000

	// sendTimeout bounds the persistence round-trip for a single send.
	sendTimeout = 5 * time.Second
)

// Client represents one active WebSocket connection. The identified user may
// change at most once, when the identify event arrives; until then the
// connection can neither send nor receive typed events.
type Client struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// presence registry this connection registers into on identify.
	registry *presence.Registry

	// message router handling sends from this connection.
	router *Router

	// typing signal relay.
	typing *TypingRelay

	// read-only profile lookup, used to annotate identify events.
	directory directory.Directory

	// userID is the identity announced via the identify event; empty until then.
	// Written and read only by the ReadPump goroutine.
	userID string

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	metrics *metrics.Metrics

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for a freshly upgraded connection.
func NewClient(wsConn *websocket.Conn, registry *presence.Registry, router *Router, typing *TypingRelay, dir directory.Directory, m *metrics.Metrics) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "Client").
		Str("remote_addr", wsConn.RemoteAddr().String()).
		Logger()

	return &Client{
		conn:      wsConn,
		registry:  registry,
		router:    router,
		typing:    typing,
		directory: dir,
		send:      make(chan []byte, 256),
		metrics:   m,
		logger:    clientLogger,
	}
}

// Push implements presence.Conn. It marshals the event into an outbound
// envelope and queues it; a full or closed queue drops the event and reports
// an error, it never blocks the caller.
func (c *Client) Push(event string, payload any) error {
	frame, err := json.Marshal(OutboundEnvelope{Event: event, Payload: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling outbound event")
		return err
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Str("event", event).Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
		return fmt.Errorf("client send queue full")
	}
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), event dispatch, and performs cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.dispatch(frame)
	}
}

// cleanupOnDisconnect handles the cleanup steps when the ReadPump terminates.
// The registry ignores the unregister if this connection was already replaced
// by a newer one for the same user.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Str("user_id", c.userID).Msg("Client connection cleanup starting.")

	c.registry.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// dispatch routes one inbound frame to its event handler.
func (c *Client) dispatch(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Bytes("frame", frame).Msg("Client sent invalid JSON")
		return
	}

	switch env.Event {
	case EventIdentify:
		c.handleIdentify(env.Payload)

	case EventChatMessage:
		c.handleChatMessage(env.Payload)

	case EventTyping:
		c.handleTyping(env.Payload, true)

	case EventStopTyping:
		c.handleTyping(env.Payload, false)

	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
	}
}

// handleIdentify records the connection's durable user identity in the
// presence registry. The payload is either a bare JSON string or an object
// with a userId field; both client generations are in the wild.
func (c *Client) handleIdentify(payload json.RawMessage) {
	var userID string
	if err := json.Unmarshal(payload, &userID); err != nil {
		var obj IdentifyPayload
		if err := json.Unmarshal(payload, &obj); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid identify payload")
			return
		}
		userID = obj.UserID
	}

	if userID == "" {
		c.logger.Warn().Msg("Client sent empty identify payload")
		return
	}

	c.userID = userID
	c.registry.Register(userID, c)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	profile, err := c.directory.Lookup(ctx, userID)
	if err != nil {
		// Presence does not depend on the directory; an unknown identifier
		// still gets registered and the lookup only enriches the log.
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("Identify for user unknown to the directory")
		return
	}

	c.logger.Info().Str("user_id", userID).Str("name", profile.Name).Str("role", profile.Role).Msg("Client identified.")
}

// handleChatMessage processes an inbound chat message and hands it to the router.
func (c *Client) handleChatMessage(payload json.RawMessage) {
	var msg ChatMessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid chatMessage payload")
		return
	}

	sender := c.userID
	if sender == "" {
		sender = msg.Sender
	}
	if sender == "" {
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if len(msg.Content) > MaxContentBytes {
		c.sendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if _, err := c.router.Send(ctx, sender, RecipientOf(msg.Receiver, msg.IsGroup), msg.Content, c); err != nil {
		c.logger.Warn().Err(err).Str("receiver", msg.Receiver).Msg("Message send failed")
		c.sendError(err)
	}
}

// handleTyping forwards a typing or stop-typing signal. Unidentified
// connections have no sender to attribute the signal to and are ignored.
func (c *Client) handleTyping(payload json.RawMessage, started bool) {
	if c.userID == "" {
		return
	}

	var t TypingPayload
	if err := json.Unmarshal(payload, &t); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid typing payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	rcpt := RecipientOf(t.Receiver, t.IsGroup)
	if started {
		c.typing.NotifyTyping(ctx, c.userID, rcpt, c)
	} else {
		c.typing.NotifyStopTyping(ctx, c.userID, rcpt, c)
	}
}

// sendError pushes an error event back to this connection.
func (c *Client) sendError(err error) {
	var customErr *errs.CustomError
	if !errors.As(err, &customErr) {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	if pushErr := c.Push(EventError, ErrorPayload{Code: customErr.Code, Message: customErr.Message}); pushErr != nil {
		c.logger.Error().Err(pushErr).Msg("Failed to queue error event")
	}
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
