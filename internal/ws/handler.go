package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/oggyb/muzz-social/internal/auth"
	"github.com/oggyb/muzz-social/internal/config"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/service/social"
)

// Handler upgrades authenticated requests to live connections.
type Handler struct {
	engine *social.Engine
	auth   *auth.Authenticator
	log    *slog.Logger

	insecureSkipVerify bool
	sendBuffer         int
	pingInterval       time.Duration
}

func NewHandler(cfg *config.Config, engine *social.Engine, authn *auth.Authenticator, log *slog.Logger) *Handler {
	buffer := cfg.WS.SendBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Handler{
		engine:             engine,
		auth:               authn,
		log:                log,
		insecureSkipVerify: cfg.WS.InsecureSkipVerify,
		sendBuffer:         buffer,
		pingInterval:       cfg.WS.PingInterval,
	}
}

// Handle authenticates before accepting: an unauthenticated request gets a
// 401 and is never registered.
//
// Browsers cannot set headers on a websocket handshake, so the token may
// come as ?token=... as well as a Bearer header.
func (h *Handler) Handle(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}
	userID, err := h.auth.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": svcErr.Public(err)})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: h.insecureSkipVerify,
	})
	if err != nil {
		h.log.Warn("websocket accept failed", "user", userID, "err", err)
		return // Accept already wrote the response
	}

	client := newClient(conn, userID, h.engine, h.sendBuffer, h.log)
	ctx := c.Request.Context()

	if old, ok := h.engine.Connect(ctx, client.session()).(*Client); ok {
		go old.Close(websocket.StatusPolicyViolation, "superseded by a newer connection")
	}

	go client.writeLoop()
	go client.keepAlive(h.pingInterval)

	client.readLoop()

	h.engine.Disconnect(ctx, client.session())
	client.Close(websocket.StatusNormalClosure, "bye")
}

func bearerToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
