package app

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/otoscribe/otoscribe/internal/config"
	"github.com/otoscribe/otoscribe/internal/diarize"
	"github.com/otoscribe/otoscribe/internal/pipeline"
	"github.com/otoscribe/otoscribe/internal/storage"
	"github.com/otoscribe/otoscribe/internal/transcribe"
)

// Deps are the process-wide collaborator handles. They are built once
// at startup and never mutated afterwards; both the API server and the
// worker share this wiring.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Storage  storage.Storage
}

func Build(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*Deps, error) {
	var store *storage.S3Storage
	var transcriber transcribe.Transcriber

	switch cfg.Transcription.Backend {
	case "aws":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWS.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}

		store = storage.NewS3Storage(awsCfg)
		if err := store.EnsureBucket(ctx, cfg.AWS.Bucket); err != nil {
			return nil, err
		}

		runner := transcribe.NewRunner(transcribe.NewAWSJobAPI(awsCfg))
		transcriber = transcribe.NewRemote(store, runner, transcribe.RemoteConfig{
			Bucket:            cfg.AWS.Bucket,
			LanguageCode:      cfg.Transcription.Language,
			WithSpeakerLabels: cfg.Diarization.SidecarURL == "",
			MaxSpeakerLabels:  int32(cfg.Transcription.MaxSpeakerLabels),
		})
	case "whisper":
		transcriber = transcribe.NewWhisper(transcribe.WhisperConfig{
			APIKey:   cfg.Transcription.WhisperAPIKey,
			BaseURL:  cfg.Transcription.WhisperBaseURL,
			Model:    cfg.Transcription.WhisperModel,
			Language: cfg.Transcription.Language,
		})
	default:
		return nil, fmt.Errorf("unknown transcription backend: %s", cfg.Transcription.Backend)
	}

	var diarizer diarize.Diarizer
	if cfg.Diarization.SidecarURL != "" {
		diarizer = diarize.NewPyannoteClient(cfg.Diarization.SidecarURL)
	}

	var cache pipeline.ResultCache
	if rdb != nil {
		cache = pipeline.NewRedisCache(rdb, time.Duration(cfg.Pipeline.CacheTTLMin)*time.Minute)
	}

	pipe := pipeline.New(pipeline.Options{
		Diarizer:     diarizer,
		Transcriber:  transcriber,
		Cache:        cache,
		TempDir:      cfg.Pipeline.TempDir,
		MaxInference: int64(cfg.Pipeline.MaxInference),
	})

	deps := &Deps{Pipeline: pipe}
	if store != nil {
		deps.Storage = store
	}
	return deps, nil
}
