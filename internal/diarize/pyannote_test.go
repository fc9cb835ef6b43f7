package diarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestPyannoteClient_ParsesTurns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Write([]byte(`{"turns": [
			{"start": 0.5, "end": 4.2, "speaker": "SPEAKER_00"},
			{"start": 4.4, "end": 9.1, "speaker": "SPEAKER_01"}
		]}`))
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := NewPyannoteClient(srv.URL)
	timeline, err := c.Diarize(context.Background(), wav)
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("got %d turns", len(timeline))
	}
	if timeline[0].Speaker != "SPEAKER_00" || timeline[0].Start != 0.5 {
		t.Errorf("turn 0 = %+v", timeline[0])
	}
	if timeline[1].Speaker != "SPEAKER_01" || timeline[1].End != 9.1 {
		t.Errorf("turn 1 = %+v", timeline[1])
	}
}

func TestPyannoteClient_ErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := NewPyannoteClient(srv.URL)
	if _, err := c.Diarize(context.Background(), wav); err == nil {
		t.Fatal("expected error")
	}
}
