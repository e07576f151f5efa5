package ws_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/app"
	"github.com/oggyb/muzz-social/internal/auth"
	"github.com/oggyb/muzz-social/internal/config"
	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/db/dbtest"
	"github.com/oggyb/muzz-social/internal/logger"
	"github.com/oggyb/muzz-social/internal/service/social"
	"github.com/oggyb/muzz-social/internal/ws"
)

const (
	timeout = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type fixture struct {
	srv    *httptest.Server
	appCtx *app.AppContext
	engine *social.Engine
	authn  *auth.Authenticator
	gdb    *gorm.DB
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := dbtest.Open(t)
	dbtest.CreateUsers(t, gdb, 3)

	cfg := config.New()
	cfg.WS.PingInterval = 0

	appCtx := app.New(gdb, nil, logger.Discard())
	engine := social.NewEngine(appCtx)
	authn := auth.NewAuthenticator("test-secret", time.Hour)

	r := gin.New()
	r.GET("/ws", ws.NewHandler(cfg, engine, authn, appCtx.Logger).Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, appCtx: appCtx, engine: engine, authn: authn, gdb: gdb}
}

func (f *fixture) url(token string) string {
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func (f *fixture) dial(t *testing.T, id uint64) *websocket.Conn {
	t.Helper()
	token, err := f.authn.Issue(id)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, f.url(token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	require.Eventually(t, func() bool {
		_, ok := f.appCtx.Registry.Lookup(id)
		return ok
	}, timeout, tick)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame any) {
	t.Helper()
	data, err := json.Marshal(frame)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

// next reads frames until one of the wanted type arrives.
func next(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err, "waiting for %s", typ)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		if frame["type"] == typ {
			return frame
		}
	}
}

func TestHandshake_RejectsMissingAndBadTokens(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, token := range []string{"", "not-a-jwt"} {
		_, resp, err := websocket.Dial(ctx, f.url(token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Equal(t, 0, f.appCtx.Registry.Online())
}

func TestHandshake_BearerHeader(t *testing.T) {
	f := setup(t)
	token, err := f.authn.Issue(1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, f.url(""), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	require.NoError(t, err)
	defer conn.CloseNow()

	assert.Eventually(t, func() bool {
		_, ok := f.appCtx.Registry.Lookup(1)
		return ok
	}, timeout, tick)
}

func TestMessaging_EndToEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.engine.Like(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.engine.Like(ctx, 2, 1)
	require.NoError(t, err)

	alice := f.dial(t, 1)
	bob := f.dial(t, 2)

	send(t, alice, map[string]any{"type": "send_message", "receiver_id": 2, "content": "hello"})

	sent := next(t, alice, "message_sent")
	assert.Equal(t, "hello", sent["content"])
	got := next(t, bob, "new_message")
	assert.Equal(t, float64(1), got["sender_id"])
	notif := next(t, bob, "new_notification")
	assert.Equal(t, "message", notif["notification_type"])

	send(t, bob, map[string]any{"type": "mark_messages_read", "sender_id": 1})
	read := next(t, alice, "messages_read")
	assert.Equal(t, float64(2), read["reader_id"])
}

func TestMessaging_ErrorsGoToActorOnly(t *testing.T) {
	f := setup(t)
	alice := f.dial(t, 1)

	send(t, alice, map[string]any{"type": "send_message", "receiver_id": 3, "content": "hi"})
	frame := next(t, alice, "error")
	assert.Equal(t, "send_message", frame["action"])
	assert.Equal(t, "you can only message your matches", frame["message"])

	send(t, alice, map[string]any{"type": "dance"})
	frame = next(t, alice, "error")
	assert.Contains(t, fmt.Sprint(frame["message"]), "unknown action")

	assert.Equal(t, int64(0), dbtest.Count(t, f.gdb, &db.Message{}, ""))
}

func TestDisconnect_Unregisters(t *testing.T) {
	f := setup(t)
	conn := f.dial(t, 1)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool {
		_, ok := f.appCtx.Registry.Lookup(1)
		return !ok
	}, timeout, tick)
}

func TestReconnect_SupersedesOldConnection(t *testing.T) {
	f := setup(t)
	first := f.dial(t, 1)
	firstConn, _ := f.appCtx.Registry.Lookup(1)

	f.dial(t, 1)
	require.Eventually(t, func() bool {
		conn, ok := f.appCtx.Registry.Lookup(1)
		return ok && conn.ID() != firstConn.ID()
	}, timeout, tick)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, _, err := first.Read(ctx)
	require.Error(t, err)

	// the old connection's teardown must not evict the new one
	time.Sleep(50 * time.Millisecond)
	_, ok := f.appCtx.Registry.Lookup(1)
	assert.True(t, ok)
}
