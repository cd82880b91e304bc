// Copyright (c) 2026 CampusGate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the CampusGate portal API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Register Prometheus collectors.
//  7. Wire the access-control core (audit sink, role resolver) and domains.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/campusgate/internal/api"
	"github.com/taibuivan/campusgate/internal/audit"
	"github.com/taibuivan/campusgate/internal/platform/config"
	"github.com/taibuivan/campusgate/internal/platform/constants"
	"github.com/taibuivan/campusgate/internal/platform/migration"
	"github.com/taibuivan/campusgate/internal/platform/obs"
	pgstore "github.com/taibuivan/campusgate/internal/platform/postgres"
	redisstore "github.com/taibuivan/campusgate/internal/platform/redis"
	"github.com/taibuivan/campusgate/internal/platform/sec"
	"github.com/taibuivan/campusgate/internal/rbac"
	"github.com/taibuivan/campusgate/internal/tutorial"
	"github.com/taibuivan/campusgate/internal/users/auth"
	"github.com/taibuivan/campusgate/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "campusgate"))
	slog.SetDefault(log)

	log.Info("[CampusGate] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "campusgate"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("magic_link_enabled", cfg.MagicLinkEnabled),
		slog.Bool("sudo_enabled", cfg.SudoEnabled),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
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
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Metrics ────────────────────────────────────────────────────────
	obs.Init()

	// ── 7. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. Access-Control Core ────────────────────────────────────────────
	// The audit service doubles as the rbac.Recorder every domain emits into.
	auditStore := audit.NewPostgresStore(pool)
	auditService := audit.NewService(auditStore, log)
	resolver := rbac.NewResolver(cfg.SudoEnabled, cfg.SudoOverrideEmail, auditService)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	identityRepository := auth.NewIdentityRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	magicLinkRepository := auth.NewMagicLinkRepository(rdb)

	profileStore := profile.NewPostgresStore(pool)
	profileService := profile.NewService(profileStore, sessionRepository, resolver, auditService, log)
	profileHandler := profile.NewHandler(profileService)

	authService := auth.NewService(
		identityRepository,
		sessionRepository,
		magicLinkRepository,
		profileStore,
		auditService,
		jwtSvc,
		auth.LogLinkSender{Logger: log},
		auth.Config{
			MagicLinkEnabled:              cfg.MagicLinkEnabled,
			StaffEmailDomain:              cfg.StaffEmailDomain,
			StaffDomainEnforcementEnabled: cfg.StaffDomainEnforcementEnabled,
		},
		log,
	)
	authHandler := auth.NewHandler(authService)

	tutorialStore := tutorial.NewPostgresStore(pool)
	tutorialService := tutorial.NewService(tutorialStore, auditService, log)
	tutorialHandler := tutorial.NewHandler(tutorialService)

	auditHandler := audit.NewHandler(auditService)

	// Periodic removal of expired session rows.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go func() {
		ticker := time.NewTicker(constants.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if err := authService.SweepExpiredSessions(sweepCtx); err != nil {
					log.Error("session_sweep_failed", slog.Any("error", err))
				}
			}
		}
	}()

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Users:     profileHandler,
		Tutorials: tutorialHandler,
		Audit:     auditHandler,
	}

	server := api.NewServer(startupCtx, cfg, log, jwtSvc, resolver, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
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

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
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
