package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/otoscribe/otoscribe/internal/app"
	"github.com/otoscribe/otoscribe/internal/config"
	"github.com/otoscribe/otoscribe/internal/database"
	"github.com/otoscribe/otoscribe/internal/queue"
	"github.com/otoscribe/otoscribe/internal/queue/workers"
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

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database required for worker", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis required for worker", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	deps, err := app.Build(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	if deps.Storage == nil {
		slog.Error("object storage required for worker (TRANSCRIBE_BACKEND=aws)")
		os.Exit(1)
	}

	transcriptSvc := transcript.NewService(db, deps.Storage, cfg.AWS.Bucket)
	audioWorker := workers.NewAudioWorker(deps.Pipeline, transcriptSvc)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// each task can hold a transcription job open for minutes;
			// keep concurrency modest
			Concurrency: 4,
		},
	)

	slog.Info("starting worker", "concurrency", 4)
	if err := srv.Run(queue.NewMux(asynq.HandlerFunc(audioWorker.ProcessTask))); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
