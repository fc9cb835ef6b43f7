package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeStore struct {
	uploads   []string
	deletes   []string
	deleteErr error
}

func (s *fakeStore) Upload(ctx context.Context, bucket, key string, data io.Reader, contentType string) error {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return err
	}
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *fakeStore) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) Delete(ctx context.Context, bucket, key string) error {
	s.deletes = append(s.deletes, key)
	return s.deleteErr
}

func (s *fakeStore) URI(bucket, key string) string {
	return "fake://" + bucket + "/" + key
}

func writeTestWav(t *testing.T) string {
	t.Helper()
	wav := filepath.Join(t.TempDir(), "a1b2c3.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return wav
}

func newTestRemote(store *fakeStore, api JobAPI) *Remote {
	r, _ := newTestRunner(api)
	return NewRemote(store, r, RemoteConfig{Bucket: "b", LanguageCode: "ja-JP"})
}

func TestRemote_StagesRunsAndRemovesObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalTranscript))
	}))
	defer srv.Close()

	store := &fakeStore{}
	api := &scriptedAPI{statuses: []Job{
		{Name: "j", Status: StatusInProgress},
		{Name: "j", Status: StatusCompleted, ResultURI: srv.URL},
	}}
	rem := newTestRemote(store, api)

	res, err := rem.Transcribe(context.Background(), writeTestWav(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("parsed %d words, want 2", len(res.Words))
	}

	if len(store.uploads) != 1 || store.uploads[0] != "uploads/a1b2c3.wav" {
		t.Errorf("uploads = %v, want [uploads/a1b2c3.wav]", store.uploads)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "uploads/a1b2c3.wav" {
		t.Errorf("deletes = %v, want exactly the staged key", store.deletes)
	}

	if len(api.started) != 1 {
		t.Fatalf("submitted %d jobs, want 1", len(api.started))
	}
	req := api.started[0]
	if req.Name != "diarization-a1b2c3" {
		t.Errorf("job name = %q, want diarization-a1b2c3", req.Name)
	}
	if req.MediaURI != "fake://b/uploads/a1b2c3.wav" {
		t.Errorf("media URI = %q, want the staged object's URI", req.MediaURI)
	}
}

func TestRemote_RemovesObjectWhenJobFails(t *testing.T) {
	store := &fakeStore{}
	api := &scriptedAPI{statuses: []Job{
		{Name: "j", Status: StatusFailed, FailureReason: "Bad audio"},
	}}
	rem := newTestRemote(store, api)

	_, err := rem.Transcribe(context.Background(), writeTestWav(t))
	var execErr *JobExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected JobExecutionError, got %v", err)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "uploads/a1b2c3.wav" {
		t.Errorf("deletes = %v, want exactly the staged key", store.deletes)
	}
}

func TestRemote_DeleteFailureDoesNotMaskOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalTranscript))
	}))
	defer srv.Close()

	store := &fakeStore{deleteErr: errors.New("object already gone")}
	api := &scriptedAPI{statuses: []Job{
		{Name: "j", Status: StatusCompleted, ResultURI: srv.URL},
	}}
	rem := newTestRemote(store, api)

	res, err := rem.Transcribe(context.Background(), writeTestWav(t))
	if err != nil {
		t.Fatalf("delete failure leaked into the result: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("parsed %d words, want 2", len(res.Words))
	}
	if len(store.deletes) != 1 {
		t.Errorf("delete attempted %d times, want 1", len(store.deletes))
	}
}

func TestRemote_UploadFailureSkipsJobAndCleanup(t *testing.T) {
	store := &fakeStore{}
	api := &scriptedAPI{}
	r, _ := newTestRunner(api)
	rem := NewRemote(store, r, RemoteConfig{Bucket: "b"})

	missing := filepath.Join(t.TempDir(), "missing.wav")
	_, err := rem.Transcribe(context.Background(), missing)
	if err == nil || !strings.Contains(err.Error(), "open waveform") {
		t.Fatalf("err = %v, want open failure", err)
	}
	if len(api.started) != 0 {
		t.Errorf("job submitted despite missing waveform")
	}
	if len(store.deletes) != 0 {
		t.Errorf("delete attempted with nothing staged")
	}
}
