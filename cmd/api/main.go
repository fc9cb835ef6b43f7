package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/otoscribe/otoscribe/internal/api"
	"github.com/otoscribe/otoscribe/internal/app"
	"github.com/otoscribe/otoscribe/internal/config"
	"github.com/otoscribe/otoscribe/internal/database"
	"github.com/otoscribe/otoscribe/internal/queue"
	"github.com/otoscribe/otoscribe/internal/transcript"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database connection is optional: async mode needs it, sync mode doesn't.
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, async endpoints disabled", "error", err)
		db = nil
	} else {
		defer db.Close()

		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
	}

	// Redis backs the result cache and the queue; also optional.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache and queue", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	deps, err := app.Build(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	var transcriptSvc *transcript.Service
	var queueClient *queue.Client
	if db != nil && rdb != nil && deps.Storage != nil {
		transcriptSvc = transcript.NewService(db, deps.Storage, cfg.AWS.Bucket)
		queueClient = queue.NewClient(cfg.Redis)
		defer queueClient.Close()
	}

	router := api.NewRouter(db, rdb, cfg, deps.Pipeline, transcriptSvc, queueClient)
	handler := router.Setup()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
		// processing runs inside the request on the sync endpoint;
		// the write timeout must outlive the remote job ceiling
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
