// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Bookhub HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the token codec and route classifier.
//  7. Wire domain services and HTTP handlers.
//  8. Start background jobs (rate limiter eviction, file cleanup).
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/bookhub/internal/api"
	"github.com/taibuivan/bookhub/internal/auth"
	"github.com/taibuivan/bookhub/internal/book"
	"github.com/taibuivan/bookhub/internal/file"
	"github.com/taibuivan/bookhub/internal/platform/config"
	"github.com/taibuivan/bookhub/internal/platform/constants"
	"github.com/taibuivan/bookhub/internal/platform/middleware"
	"github.com/taibuivan/bookhub/internal/platform/migration"
	pgstore "github.com/taibuivan/bookhub/internal/platform/postgres"
	redisstore "github.com/taibuivan/bookhub/internal/platform/redis"
	"github.com/taibuivan/bookhub/internal/platform/route"
	"github.com/taibuivan/bookhub/internal/platform/sec"
	"github.com/taibuivan/bookhub/internal/user"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("[Bookhub] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.ServerBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log, pgstore.WithMaxConns(cfg.DatabaseMaxConns))
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(startupCtx, cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security ───────────────────────────────────────────────────────
	codec, err := sec.NewTokenCodec(cfg.JWTSecretKey, constants.AuthIssuer, sec.WithTTL(cfg.JWTAccessTTL))
	must(log, err, "initialize token codec")

	classifier := route.NewClassifier(route.DefaultExemptPatterns...)
	limiter := middleware.NewRateLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	storage, err := file.NewLocalStorage(cfg.UploadDir)
	must(log, err, "open upload directory")
	defer func() { _ = storage.Close() }()

	fileService := file.NewService(file.NewPostgresRepository(pool), storage, cfg.ServerBaseURL, log)

	userRepository := user.NewPostgresRepository(pool)
	authService := auth.NewService(userRepository, fileService, codec, log, auth.WithAdminSignupBlocked(cfg.BlockAdminSignup))
	userService := user.NewService(userRepository, fileService, log, user.WithSelfRoleLock(cfg.LockSelfRole))
	bookService := book.NewService(book.NewPostgresRepository(pool), fileService, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		Book:      book.NewHandler(bookService),
		File:      file.NewHandler(fileService, cfg.MaxUploadBytes),
	}

	// ── 9. Background Jobs ────────────────────────────────────────────────
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	cleanupLock := redisstore.NewLock(rdb, constants.RedisKeyFileCleanupLock, constants.CleanupLockTTL)
	cleaner := file.NewCleaner(fileService, cleanupLock, cfg.FileCleanupMinAge, log)

	go limiter.Run(jobsCtx)
	go cleaner.Run(jobsCtx)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Guards{
		Verifier:   codec,
		Classifier: classifier,
		Limiter:    limiter,
	}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	stopJobs()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the process-wide JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
