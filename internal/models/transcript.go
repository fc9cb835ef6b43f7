package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Transcript is one asynchronous diarization request and, once
// processing finished, its speaker-attributed result.
type Transcript struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Filename  string          `json:"filename" db:"filename"`
	UploadKey string          `json:"-" db:"upload_key"`
	Status    string          `json:"status" db:"status"`
	Error     string          `json:"error,omitempty" db:"error"`
	Segments  json.RawMessage `json:"transcription,omitempty" db:"segments"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

const (
	TranscriptStatusPending    = "pending"
	TranscriptStatusProcessing = "processing"
	TranscriptStatusCompleted  = "completed"
	TranscriptStatusFailed     = "failed"
)
