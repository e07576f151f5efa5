package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/muzz-social/internal/app"
	"github.com/oggyb/muzz-social/internal/auth"
	"github.com/oggyb/muzz-social/internal/config"
	"github.com/oggyb/muzz-social/internal/db/dbtest"
	"github.com/oggyb/muzz-social/internal/logger"
	"github.com/oggyb/muzz-social/internal/presence/presencetest"
	"github.com/oggyb/muzz-social/internal/server"
	"github.com/oggyb/muzz-social/internal/service/social"
	"github.com/oggyb/muzz-social/internal/ws"
)

func TestHealthz_ReportsOnlineCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.New()
	appCtx := app.New(dbtest.Open(t), nil, logger.Discard())
	engine := social.NewEngine(appCtx)
	handler := ws.NewHandler(cfg, engine, auth.NewAuthenticator("s", time.Hour), appCtx.Logger)

	appCtx.Registry.Register(1, presencetest.NewRecorder("a"))

	rec := httptest.NewRecorder()
	router := server.NewRouter(cfg, appCtx, handler)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["online"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewHTTPServer_Addr(t *testing.T) {
	cfg := config.New()
	cfg.HTTP.Host, cfg.HTTP.Port = "0.0.0.0", "9000"
	srv := server.NewHTTPServer(cfg, http.NotFoundHandler())
	assert.Equal(t, "0.0.0.0:9000", srv.Addr)
}

func TestGRPCServer_RegistrarFunc(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(logger.Discard(), nil,
		server.RegistrarFunc(func(s *grpc.Server) { healthpb.RegisterHealthServer(s, health.NewServer()) }),
	)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
