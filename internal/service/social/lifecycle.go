package social

import (
	"context"

	"github.com/oggyb/muzz-social/internal/events"
	"github.com/oggyb/muzz-social/internal/presence"
)

// Connect moves an authenticated connection to Active: it registers the
// connection, stamps last seen and tells every reachable match that the user
// came online. Returns the connection it superseded, which the caller should
// close.
//
// Connect and Disconnect for one identity run one at a time, so matches
// always hear the transitions in the order the registry saw them.
func (e *Engine) Connect(ctx context.Context, sess Session) presence.Conn {
	unlock := e.sessions.Lock(sess.UserID)
	defer unlock()

	superseded := e.reg.Register(sess.UserID, sess.Conn)
	e.log.Info("user connected", "user", sess.UserID, "conn", sess.Conn.ID(), "online", e.reg.Online())

	store := storeCtx(ctx)
	if err := e.users.TouchLastSeen(store, sess.UserID, e.now()); err != nil {
		e.log.Warn("last seen update failed", "user", sess.UserID, "err", err)
	}
	e.broadcastToMatches(store, sess.UserID, events.UserOnline{UserID: sess.UserID})
	return superseded
}

// Disconnect moves a connection to Closed. Nothing is announced when a newer
// connection for the same user has already taken over.
func (e *Engine) Disconnect(ctx context.Context, sess Session) {
	unlock := e.sessions.Lock(sess.UserID)
	defer unlock()

	if !e.reg.Unregister(sess.UserID, sess.Conn) {
		e.log.Debug("stale disconnect ignored", "user", sess.UserID, "conn", sess.Conn.ID())
		return
	}
	e.log.Info("user disconnected", "user", sess.UserID, "conn", sess.Conn.ID(), "online", e.reg.Online())

	store := storeCtx(ctx)
	seen := e.now().UTC()
	if err := e.users.TouchLastSeen(store, sess.UserID, seen); err != nil {
		e.log.Warn("last seen update failed", "user", sess.UserID, "err", err)
	}
	e.broadcastToMatches(store, sess.UserID, events.UserOffline{UserID: sess.UserID, LastSeen: seen})
}

// broadcastToMatches delivers ev to every currently matched counterpart that
// is reachable. Unreachable ones are skipped, never queued.
func (e *Engine) broadcastToMatches(ctx context.Context, id uint64, ev events.Event) {
	matches, err := e.rel.MatchedWith(ctx, id)
	if err != nil {
		e.log.Error("match lookup failed", "user", id, "event", ev.Kind(), "err", err)
		return
	}
	delivered := 0
	for _, m := range matches {
		if e.reg.Deliver(m, ev) {
			delivered++
		}
	}
	e.log.Debug("presence broadcast", "user", id, "event", ev.Kind(), "matches", len(matches), "delivered", delivered)
}
