package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otoscribe/otoscribe/internal/align"
	"github.com/otoscribe/otoscribe/internal/models"
	"github.com/otoscribe/otoscribe/internal/storage"
)

const transcriptColumns = "id, filename, upload_key, status, error, segments, created_at, updated_at"

// Service persists asynchronous transcription requests. The raw
// upload is parked in object storage until a worker picks it up; the
// result rows stay in Postgres.
type Service struct {
	db     *pgxpool.Pool
	store  storage.Storage
	bucket string
}

func NewService(db *pgxpool.Pool, store storage.Storage, bucket string) *Service {
	return &Service{db: db, store: store, bucket: bucket}
}

// Create stages the upload and inserts a pending transcript row.
func (s *Service) Create(ctx context.Context, filename, contentType string, data []byte) (*models.Transcript, error) {
	id := uuid.New()
	key := fmt.Sprintf("incoming/%s%s", id, filepath.Ext(filename))

	if err := s.store.Upload(ctx, s.bucket, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	var t models.Transcript
	err := s.db.QueryRow(ctx,
		`INSERT INTO transcripts (id, filename, upload_key, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+transcriptColumns,
		id, filename, key, models.TranscriptStatusPending,
	).Scan(&t.ID, &t.Filename, &t.UploadKey, &t.Status, &t.Error, &t.Segments, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		// the row never existed; don't leave the staged object behind
		if derr := s.store.Delete(ctx, s.bucket, key); derr != nil {
			slog.Debug("staged upload cleanup skipped", "key", key, "error", derr)
		}
		return nil, fmt.Errorf("insert transcript: %w", err)
	}
	return &t, nil
}

// FetchUpload reads back the staged audio for processing.
func (s *Service) FetchUpload(ctx context.Context, t *models.Transcript) ([]byte, error) {
	rc, err := s.store.Download(ctx, s.bucket, t.UploadKey)
	if err != nil {
		return nil, fmt.Errorf("fetch staged upload: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// DiscardUpload removes the staged audio once processing is done with
// it, successfully or not. Best effort.
func (s *Service) DiscardUpload(ctx context.Context, t *models.Transcript) {
	if err := s.store.Delete(ctx, s.bucket, t.UploadKey); err != nil {
		slog.Debug("staged upload cleanup skipped", "key", t.UploadKey, "error", err)
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Transcript, error) {
	var t models.Transcript
	err := s.db.QueryRow(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE id = $1`, id,
	).Scan(&t.ID, &t.Filename, &t.UploadKey, &t.Status, &t.Error, &t.Segments, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return &t, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Transcript, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []models.Transcript
	for rows.Next() {
		var t models.Transcript
		if err := rows.Scan(&t.ID, &t.Filename, &t.UploadKey, &t.Status, &t.Error, &t.Segments, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM transcripts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	// staged object is normally gone already; ignore leftovers
	s.DiscardUpload(ctx, t)
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE transcripts SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update transcript status: %w", err)
	}
	return nil
}

// Complete records the finished segments and flips the row to
// completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, segs []align.Segment) error {
	data, err := json.Marshal(segs)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`UPDATE transcripts SET status = $2, segments = $3, updated_at = now() WHERE id = $1`,
		id, models.TranscriptStatusCompleted, data)
	if err != nil {
		return fmt.Errorf("complete transcript: %w", err)
	}
	return nil
}

func (s *Service) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE transcripts SET status = $2, error = $3, updated_at = now() WHERE id = $1`,
		id, models.TranscriptStatusFailed, reason)
	if err != nil {
		return fmt.Errorf("fail transcript: %w", err)
	}
	return nil
}
