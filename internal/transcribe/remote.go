package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/otoscribe/otoscribe/internal/storage"
)

// RemoteConfig controls the asynchronous remote transcription path.
// WithSpeakerLabels is the alternate mode: the provider labels
// speakers itself and the result carries a speaker timeline in place
// of a local diarization run.
type RemoteConfig struct {
	Bucket            string
	LanguageCode      string
	WithSpeakerLabels bool
	MaxSpeakerLabels  int32
}

// Remote stages the waveform in object storage, drives the provider
// job through the Runner, and removes the staged object on the way
// out regardless of outcome.
type Remote struct {
	store  storage.Storage
	runner *Runner
	cfg    RemoteConfig
}

func NewRemote(store storage.Storage, runner *Runner, cfg RemoteConfig) *Remote {
	return &Remote{store: store, runner: runner, cfg: cfg}
}

func (r *Remote) Name() string { return "remote-job" }

func (r *Remote) Transcribe(ctx context.Context, wavPath string) (*Result, error) {
	base := filepath.Base(wavPath)
	key := "uploads/" + base

	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("open waveform: %w", err)
	}
	defer f.Close()

	if err := r.store.Upload(ctx, r.cfg.Bucket, key, f, "audio/wav"); err != nil {
		return nil, fmt.Errorf("stage waveform: %w", err)
	}
	defer func() {
		// Best effort; an already-absent object must not mask the
		// request outcome.
		if err := r.store.Delete(context.WithoutCancel(ctx), r.cfg.Bucket, key); err != nil {
			slog.Debug("staged object cleanup skipped", "key", key, "error", err)
		}
	}()

	req := StartJobRequest{
		Name:              "diarization-" + strings.TrimSuffix(base, filepath.Ext(base)),
		LanguageCode:      r.cfg.LanguageCode,
		MediaURI:          r.store.URI(r.cfg.Bucket, key),
		ShowSpeakerLabels: r.cfg.WithSpeakerLabels,
		MaxSpeakerLabels:  r.cfg.MaxSpeakerLabels,
	}
	return r.runner.Run(ctx, req)
}
