package gateway

import (
	"sync"
)

// Registry is the single shared mutable structure of the gateway: it maps a
// user id to its one live client (last-writer-wins on reconnect) and tracks
// every connection by conn id, including anonymous ones that never supplied
// a user id. All mutation is serialized behind the mutex; callers never
// coordinate externally.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client // user id -> current client, at most one
	byConn map[string]*Client // conn id -> client, every connection
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]*Client),
		byConn: make(map[string]*Client),
	}
}

// Register tracks a new connection. A client with a user id unconditionally
// replaces any mapping that user already had; the replaced client stays
// connected and keeps receiving broadcasts until its own transport closes,
// it just stops being a delivery target. Cannot fail.
func (r *Registry) Register(c *Client) {
	if c == nil || c.ConnID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[c.ConnID] = c
	if c.UserID != "" {
		r.byUser[c.UserID] = c
	}
}

// Unregister removes the connection. The user mapping is removed only when
// it still points at this exact client, so a stale close signal racing a
// newer reconnect never evicts the newer session.
func (r *Registry) Unregister(c *Client) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, c.ConnID)
	if c.UserID != "" {
		if cur, ok := r.byUser[c.UserID]; ok && cur == c {
			delete(r.byUser, c.UserID)
		}
	}
}

// Lookup resolves the current client for a user. Never blocks.
func (r *Registry) Lookup(user string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[user]
	return c, ok
}

// Snapshot returns a point-in-time copy of the online user set. Callers may
// iterate it freely; it never aliases registry state.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	return out
}

// Clients returns a copy of every tracked connection, anonymous included.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}

func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
