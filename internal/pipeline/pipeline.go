package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"lukechampine.com/blake3"

	"github.com/otoscribe/otoscribe/internal/align"
	"github.com/otoscribe/otoscribe/internal/diarize"
	"github.com/otoscribe/otoscribe/internal/media"
	"github.com/otoscribe/otoscribe/internal/transcribe"
)

// Pipeline sequences one request end to end: persist upload, normalize
// to wav, diarize, transcribe, align. Collaborators are injected once
// at startup and treated as read-only afterwards.
type Pipeline struct {
	diarizer    diarize.Diarizer // nil = rely on provider speaker labels
	transcriber transcribe.Transcriber
	cache       ResultCache
	tempDir     string
	sem         *semaphore.Weighted
	convert     func(ctx context.Context, inPath, outPath string) error
}

// Options for NewPipeline. Diarizer may be nil only when the
// transcriber produces its own speaker timeline (remote job with
// speaker labels requested).
type Options struct {
	Diarizer     diarize.Diarizer
	Transcriber  transcribe.Transcriber
	Cache        ResultCache
	TempDir      string
	MaxInference int64
	// Convert overrides the ffmpeg normalization step; tests use it to
	// avoid shelling out.
	Convert func(ctx context.Context, inPath, outPath string) error
}

func New(opts Options) *Pipeline {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.MaxInference <= 0 {
		opts.MaxInference = 2
	}
	if opts.Convert == nil {
		opts.Convert = media.ToWav
	}
	return &Pipeline{
		diarizer:    opts.Diarizer,
		transcriber: opts.Transcriber,
		cache:       opts.Cache,
		tempDir:     opts.TempDir,
		sem:         semaphore.NewWeighted(opts.MaxInference),
		convert:     opts.Convert,
	}
}

// Process runs the full pipeline for one uploaded file and returns the
// speaker-attributed transcript. Transient artifacts are removed on
// the way out no matter how far processing got; removal problems never
// replace the original outcome.
func (p *Pipeline) Process(ctx context.Context, data []byte, filename string) ([]align.Segment, error) {
	sum := blake3.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if p.cache != nil {
		if segs, ok := p.cache.Get(ctx, hash); ok {
			slog.Info("transcript served from cache", "hash", hash)
			return segs, nil
		}
	}

	id := uuid.New().String()
	rawPath := filepath.Join(p.tempDir, id+filepath.Ext(filename))
	wavPath := filepath.Join(p.tempDir, id+".wav")
	defer func() {
		removeQuiet(rawPath)
		removeQuiet(wavPath)
	}()

	if err := os.MkdirAll(p.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	if err := os.WriteFile(rawPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}

	// Transcoding and diarization are CPU-bound; bounding them keeps a
	// burst of uploads from starving the poll loops of in-flight jobs.
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	timeline, err := p.prepare(ctx, rawPath, wavPath)
	p.sem.Release(1)
	if err != nil {
		return nil, err
	}

	res, err := p.transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return nil, err
	}
	if p.diarizer == nil {
		timeline = res.SpeakerTimeline
	}

	segs := align.Align(timeline, res.Words, res.Join)
	if p.cache != nil {
		p.cache.Set(ctx, hash, segs)
	}
	return segs, nil
}

func (p *Pipeline) prepare(ctx context.Context, rawPath, wavPath string) ([]align.Interval, error) {
	if err := p.convert(ctx, rawPath, wavPath); err != nil {
		return nil, err
	}
	if p.diarizer == nil {
		return nil, nil
	}
	timeline, err := p.diarizer.Diarize(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("diarize: %w", err)
	}
	return timeline, nil
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Debug("temp file cleanup skipped", "path", path, "error", err)
	}
}
