package storage

import (
	"context"
	"io"
)

// Storage is the object store the pipeline stages transient audio in
// for remote transcription jobs.
type Storage interface {
	Upload(ctx context.Context, bucket, key string, data io.Reader, contentType string) error
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
	URI(bucket, key string) string
}
