package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/studyhall-platform/studyhall/internal/access"
	"github.com/studyhall-platform/studyhall/internal/app"
	"github.com/studyhall-platform/studyhall/internal/audit"
	audithttp "github.com/studyhall-platform/studyhall/internal/audit/http"
	"github.com/studyhall-platform/studyhall/internal/consumption"
	"github.com/studyhall-platform/studyhall/internal/content"
	contenthttp "github.com/studyhall-platform/studyhall/internal/content/http"
	"github.com/studyhall-platform/studyhall/internal/forum"
	"github.com/studyhall-platform/studyhall/internal/observability"
	"github.com/studyhall-platform/studyhall/internal/platform/cache"
	"github.com/studyhall-platform/studyhall/internal/platform/db"
	"github.com/studyhall-platform/studyhall/internal/principal"
	"github.com/studyhall-platform/studyhall/internal/shared"
	"github.com/studyhall-platform/studyhall/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "studyhall_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)

	resolver := principal.NewResolver(principal.NewRepository(dbpool), auditLogger, logger, cfg.OverrideEmail)

	metrics := observability.NewMetrics()

	contentRepo := content.NewRepository(dbpool)
	progressStore := consumption.NewStore(redisClient, consumption.NewRepository(dbpool))

	guard := access.Guard{Logger: logger, Observer: metrics}
	contentService := contenthttp.NewService(contentRepo, progressStore, logger)
	contentHandler := contenthttp.NewHandler(logger, contentService, contentRepo, progressStore, forum.NewRepository(dbpool), guard)

	auditHandler := audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		Resolver:       resolver,
		ContentHandler: contentHandler,
		AuditHandler:   auditHandler,
		JobHandler:     jobHandler,
		RouteGuard: app.RouteGuard{
			Logger:     logger,
			SignInPath: cfg.SignInPath,
			Observer:   metrics,
		},
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
