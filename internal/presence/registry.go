// Package presence tracks which identities hold a live connection.
package presence

import (
	"sync"

	"github.com/oggyb/muzz-social/internal/events"
)

// Conn is a live, authenticated transport channel.
type Conn interface {
	// ID is unique per connection, not per identity.
	ID() string
	// Deliver hands ev to the connection without blocking.
	// It reports false when the event was dropped.
	Deliver(ev events.Event) bool
}

// Registry maps identity -> connection. At most one connection per identity:
// the newest registration wins.
//
// The map is only reachable through the methods below; none of them
// perform I/O while holding the lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]Conn)}
}

// Register binds conn to id and returns the connection it superseded, if any.
func (r *Registry) Register(id uint64, conn Conn) (superseded Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.conns[id]
	r.conns[id] = conn
	if ok && prev.ID() != conn.ID() {
		return prev
	}
	return nil
}

// Unregister removes id only while it is still bound to conn, so a late
// disconnect cannot evict a newer connection. Reports whether it removed.
func (r *Registry) Unregister(id uint64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.conns[id]
	if !ok || cur.ID() != conn.ID() {
		return false
	}
	delete(r.conns, id)
	return true
}

// Lookup returns the connection bound to id.
func (r *Registry) Lookup(id uint64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[id]
	return c, ok
}

// Deliver looks id up and hands ev to its connection.
// Reports false when id is offline or the event was dropped.
func (r *Registry) Deliver(id uint64, ev events.Event) bool {
	c, ok := r.Lookup(id)
	if !ok {
		return false
	}
	return c.Deliver(ev)
}

// Online returns how many identities are currently registered.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
