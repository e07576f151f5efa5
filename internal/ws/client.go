// Package ws carries live connections: it authenticates the upgrade, hands
// the connection to the social engine and pumps frames in both directions.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/events"
	"github.com/oggyb/muzz-social/internal/service/social"
)

const (
	writeTimeout = 10 * time.Second
	pingTimeout  = 5 * time.Second
)

// Client is one accepted websocket bound to one identity.
// It implements presence.Conn.
type Client struct {
	id     string
	userID uint64
	conn   *websocket.Conn
	send   chan events.Event
	engine *social.Engine
	log    *slog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, userID uint64, engine *social.Engine, buffer int, log *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		send:   make(chan events.Event, buffer),
		engine: engine,
		log:    log.With("user", userID, "conn", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) ID() string { return c.id }

// Deliver queues ev for writing. A full queue or a closed client drops it.
func (c *Client) Deliver(ev events.Event) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		c.log.Warn("outbound queue full, event dropped", "event", ev.Kind())
		return false
	}
}

// Close stops the pumps and closes the socket with reason.
func (c *Client) Close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		_ = c.conn.Close(status, reason)
		c.cancel()
	})
}

func (c *Client) session() social.Session {
	return social.Session{UserID: c.userID, Conn: c}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			data, err := events.Encode(ev)
			if err != nil {
				c.log.Error("encode event failed", "event", ev.Kind(), "err", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Debug("write failed", "err", err)
				c.cancel()
				return
			}
		}
	}
}

func (c *Client) keepAlive(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, pingTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.log.Debug("ping failed", "err", err)
				c.cancel()
				return
			}
		}
	}
}

// readLoop handles frames one at a time, so a connection's actions are
// applied in the order they arrived. It returns when the peer goes away.
func (c *Client) readLoop() {
	for {
		typ, data, err := c.conn.Read(c.ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == -1 && !errors.Is(err, context.Canceled) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}
		if typ != websocket.MessageText {
			c.fail("", svcErr.Validation("expected a text frame"))
			continue
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	in, err := events.DecodeInbound(data)
	if err != nil {
		c.fail(string(in.Type), err)
		return
	}

	sess := c.session()
	switch in.Type {
	case events.ActionSendMessage:
		_, err = c.engine.SendMessage(c.ctx, sess, in.ReceiverID, in.Content)
	case events.ActionTypingStart:
		c.engine.TypingStart(sess, in.ReceiverID)
	case events.ActionTypingStop:
		c.engine.TypingStop(sess, in.ReceiverID)
	case events.ActionMarkMessagesRead:
		_, err = c.engine.MarkRead(c.ctx, sess, in.SenderID)
	}
	if err != nil {
		c.fail(string(in.Type), err)
	}
}

// fail reports err to this connection only.
func (c *Client) fail(action string, err error) {
	c.Deliver(events.Error{Action: action, Message: svcErr.Public(err)})
}
