// Command np-server starts the NeuralPress publishing API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/and161185/neuralpress/internal/config"
	"github.com/and161185/neuralpress/internal/crypto"
	"github.com/and161185/neuralpress/internal/limiter"
	"github.com/and161185/neuralpress/internal/migrate"
	"github.com/and161185/neuralpress/internal/repository/postgres"
	grpcserver "github.com/and161185/neuralpress/internal/server/grpc"
	httpserver "github.com/and161185/neuralpress/internal/server/http"
	"github.com/and161185/neuralpress/internal/service"
	"github.com/and161185/neuralpress/internal/slug"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	issueWindow     = time.Hour
	shutdownTimeout = 10 * time.Second
)

// main loads configuration, runs migrations and serves HTTP (and optionally gRPC health).
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("env", cfg.Env),
	)

	hasher, err := crypto.HasherByName(cfg.HashAlgorithm)
	if err != nil {
		logger.Fatal("hash algorithm", zap.Error(err))
	}
	if cfg.AdminSecret == "" {
		logger.Warn("ADMIN_SECRET is empty; admin routes are disabled")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Migrate {
		v, err := migrate.Up(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		logger.Info("schema ready", zap.Int64("version", v))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	credRepo := postgres.NewCredentialRepo(db)
	postRepo := postgres.NewPostRepo(db)

	probes := map[string]grpcserver.Pinger{"postgres": db}

	// Issuance limiter: Redis when configured, otherwise Postgres.
	var lim limiter.Limiter
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis url", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		defer func() { _ = rdb.Close() }()
		lim = limiter.NewRedis(rdb, issueWindow, cfg.KeysPerHour)
		probes["redis"] = grpcserver.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info("issuance limiter", zap.String("backend", "redis"))
	} else {
		lim = limiter.NewPG(pool, issueWindow, cfg.KeysPerHour)
		logger.Info("issuance limiter", zap.String("backend", "postgres"))
	}

	// Services
	keySvc := service.NewKeyService(credRepo, hasher, cfg.StoreTimeout)
	pubSvc := service.NewPublishService(postRepo, slug.New(), cfg.PublicBaseURL, cfg.StoreTimeout)
	feedSvc := service.NewFeedService(postRepo, cfg.StoreTimeout)
	adminSvc := service.NewAdminService(postRepo, credRepo, cfg.StoreTimeout)

	// HTTP
	h := httpserver.NewHandler(keySvc, pubSvc, feedSvc, adminSvc, logger)
	router := httpserver.NewRouter(h, httpserver.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminSecret:    cfg.AdminSecret,
		IssueLimiter:   lim,
	}, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening (http)", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// gRPC health (optional)
	var gs *grpc.Server
	if cfg.GRPCAddr != "" {
		health := grpcserver.NewHealth(probes, grpcserver.DefaultProbeInterval, logger)
		go health.Run(ctx)
		gs = grpcserver.NewServer(health, logger)
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("listen grpc", zap.Error(err))
		}
		go func() {
			logger.Info("listening (grpc health)", zap.String("addr", cfg.GRPCAddr))
			errCh <- gs.Serve(lis)
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	// graceful shutdown
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if gs != nil {
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-sctx.Done():
			gs.Stop()
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.IsDevelopment() {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
