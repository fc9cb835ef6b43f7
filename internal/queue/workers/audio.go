package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/otoscribe/otoscribe/internal/models"
	"github.com/otoscribe/otoscribe/internal/pipeline"
	"github.com/otoscribe/otoscribe/internal/queue"
	"github.com/otoscribe/otoscribe/internal/transcript"
)

// AudioWorker processes staged uploads: it runs the same pipeline as
// the synchronous endpoint and records the outcome on the transcript
// row. Processing failures are recorded, not retried.
type AudioWorker struct {
	pipe *pipeline.Pipeline
	svc  *transcript.Service
}

func NewAudioWorker(pipe *pipeline.Pipeline, svc *transcript.Service) *AudioWorker {
	return &AudioWorker{pipe: pipe, svc: svc}
}

func (w *AudioWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AudioProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	id, err := uuid.Parse(payload.TranscriptID)
	if err != nil {
		return fmt.Errorf("parse transcript ID: %w", err)
	}

	slog.Info("processing audio", "transcript_id", id)

	rec, err := w.svc.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get transcript: %w", err)
	}
	defer w.svc.DiscardUpload(ctx, rec)

	if err := w.svc.UpdateStatus(ctx, id, models.TranscriptStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	data, err := w.svc.FetchUpload(ctx, rec)
	if err != nil {
		w.svc.Fail(ctx, id, err.Error())
		return fmt.Errorf("fetch upload: %w", err)
	}

	segs, err := w.pipe.Process(ctx, data, rec.Filename)
	if err != nil {
		if ferr := w.svc.Fail(ctx, id, err.Error()); ferr != nil {
			slog.Error("record transcript failure", "transcript_id", id, "error", ferr)
		}
		slog.Error("audio processing failed", "transcript_id", id, "error", err)
		return nil // recorded on the row; retrying would re-run a terminal failure
	}

	if err := w.svc.Complete(ctx, id, segs); err != nil {
		return fmt.Errorf("store segments: %w", err)
	}

	slog.Info("audio processed", "transcript_id", id, "segments", len(segs))
	return nil
}
