package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oggyb/muzz-social/internal/app"
	"github.com/oggyb/muzz-social/internal/auth"
	"github.com/oggyb/muzz-social/internal/cache"
	"github.com/oggyb/muzz-social/internal/config"
	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/logger"
	"github.com/oggyb/muzz-social/internal/server"
	"github.com/oggyb/muzz-social/internal/service/interaction"
	"github.com/oggyb/muzz-social/internal/service/social"
	"github.com/oggyb/muzz-social/internal/ws"
)

const reconcileBatch = 100

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	appCtx := app.New(database, redisCache, log)
	engine := social.NewEngine(appCtx)
	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	healthSrv := health.NewServer()
	grpcServer := server.NewGRPCServer(log,
		[]grpc.UnaryServerInterceptor{interaction.AuthInterceptor(authn)},
		interaction.NewRegistrar(appCtx, engine),
		server.RegistrarFunc(func(s *grpc.Server) { healthpb.RegisterHealthServer(s, healthSrv) }),
	)
	httpServer := server.NewHTTPServer(cfg,
		server.NewRouter(cfg, appCtx, ws.NewHandler(cfg, engine, authn, log)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		errCh <- server.StartGRPCServer(cfg, grpcServer)
	}()
	go func() {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go reconcileLoop(ctx, engine, cfg.Reconcile.Interval)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	grpcServer.GracefulStop()
}

// reconcileLoop periodically announces matches that were never notified.
func reconcileLoop(ctx context.Context, engine *social.Engine, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := engine.Reconcile(ctx, reconcileBatch); err != nil {
				logger.Error("reconcile failed", "err", err)
			}
		}
	}
}
