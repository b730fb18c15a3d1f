// Package main is the entry point for the ride-sharing API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/skjutsgruppen/rideshare/backend/internal/config"
	"github.com/skjutsgruppen/rideshare/backend/internal/handler"
	"github.com/skjutsgruppen/rideshare/backend/internal/middleware"
	"github.com/skjutsgruppen/rideshare/backend/internal/report"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
	"github.com/skjutsgruppen/rideshare/backend/internal/service"
	"github.com/skjutsgruppen/rideshare/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// goose needs database/sql; OpenDBFromPool shares the pool's connections.
	sqlDB := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		slog.Error("failed to create migration provider", "error", err)
		os.Exit(1)
	}
	applied, err := provider.Up(context.Background())
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "count", len(applied))

	// --- Services ---------------------------------------------------------
	feedRepo := repo.NewFeedRepo(pool)
	reportSvc := service.NewReportService(repo.NewReportRepo(pool), logger)

	// Report sessions outlive the request that opened them. Cancelling
	// appCtx on shutdown cancels every submission still in flight.
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()
	sessions := report.NewRegistry(appCtx, reportSvc, cfg.ReportSessionTTL)

	srv := handler.NewServer(handler.Deps{
		Feed:        service.NewFeedService(feedRepo, logger),
		Search:      service.NewSearchService(repo.NewSearchRepo(pool), logger),
		Asks:        service.NewAskService(feedRepo),
		Comments:    service.NewCommentService(repo.NewCommentRepo(pool)),
		Suggestions: service.NewSuggestionService(feedRepo, repo.NewSuggestionRepo(pool)),
		Reports:     sessions,
		Log:         logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// Auth and the report rate limit are applied per route by srv.Routes.
	limiter := middleware.NewUserRateLimiter(cfg.ReportRatePerMinute, cfg.ReportRateBurst)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes(middleware.NewAuthHandler([]byte(cfg.JWTSecret)), limiter.Handler))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	sessions.CloseAll()
	cancelApp()
	slog.Info("server stopped")
}
