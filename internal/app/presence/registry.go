/*
Package presence tracks which users currently hold a live connection.

The registry maps a user identifier to its single active connection handle.
It is in-process memory only: a restart clears all presence and clients
re-announce on reconnect. This is a single-instance design — running multiple
server processes would need a shared backing store, which is why the registry
is injected into its consumers rather than kept as package state.
*/
package presence

import (
	"sync"

	"crmchat/internal/pkg/metrics"
)

// Conn is the connection handle stored per user. The WebSocket client
// implements it; tests substitute fakes.
type Conn interface {
	// Push queues an event for delivery. Best-effort: an error means the
	// event was dropped, never that it will be retried.
	Push(event string, payload any) error
}

// Registry maps user identifiers to their active connection handle.
// At most one handle per user: a later Register for the same user replaces
// the earlier one (last writer wins).
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]Conn
	metrics *metrics.Metrics
}

// NewRegistry returns an empty Registry. The metrics argument may be nil.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		conns:   make(map[string]Conn),
		metrics: m,
	}
}

// Register inserts or overwrites the mapping for userID. The replaced
// connection, if any, is not closed here; its own disconnect path will call
// Unregister, which recognizes it as stale and leaves the new entry alone.
func (r *Registry) Register(userID string, c Conn) {
	r.mu.Lock()
	r.conns[userID] = c
	n := len(r.conns)
	r.mu.Unlock()

	r.metrics.SetOnlineUsers(n)
}

// Resolve returns the active connection for userID. A false return means the
// user is offline or never registered in this process lifetime.
func (r *Registry) Resolve(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[userID]
	return c, ok
}

// Unregister removes the entry whose current value is exactly c. Disconnects
// only know their own handle, so the lookup scans by value; if the user
// already re-registered with a newer connection this is a no-op.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	for userID, current := range r.conns {
		if current == c {
			delete(r.conns, userID)
			break
		}
	}
	n := len(r.conns)
	r.mu.Unlock()

	r.metrics.SetOnlineUsers(n)
}

// Online returns the number of users with a registered connection.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
