package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/otoscribe/otoscribe/internal/align"
	"github.com/otoscribe/otoscribe/internal/models"
	"github.com/otoscribe/otoscribe/internal/pipeline"
	"github.com/otoscribe/otoscribe/internal/queue"
	"github.com/otoscribe/otoscribe/internal/transcript"
)

const maxUploadBytes = 128 << 20 // generous; recordings can be long

// DiarizeHandler serves speaker-attributed transcription, either
// synchronously or by handing the upload to the worker queue.
// transcriptSvc and queueClient may be nil when the deployment runs
// without Postgres/redis; then only the synchronous endpoint works.
type DiarizeHandler struct {
	pipe          *pipeline.Pipeline
	transcriptSvc *transcript.Service
	queueClient   *queue.Client
}

func NewDiarizeHandler(pipe *pipeline.Pipeline, svc *transcript.Service, qc *queue.Client) *DiarizeHandler {
	return &DiarizeHandler{pipe: pipe, transcriptSvc: svc, queueClient: qc}
}

// Diarize runs the full pipeline inside the request and returns
// {"transcription": [{speaker,text,start,end}...]}.
func (h *DiarizeHandler) Diarize(w http.ResponseWriter, r *http.Request) {
	data, filename, _, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	segs, err := h.pipe.Process(r.Context(), data, filename)
	if err != nil {
		slog.Error("diarization failed", "filename", filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "An error occurred: " + err.Error()})
		return
	}
	if segs == nil {
		segs = []align.Segment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"transcription": segs})
}

// DiarizeAsync stages the upload, queues it, and returns 202 with the
// transcript id to poll.
func (h *DiarizeHandler) DiarizeAsync(w http.ResponseWriter, r *http.Request) {
	if h.transcriptSvc == nil || h.queueClient == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "async processing is not configured"})
		return
	}

	data, filename, contentType, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rec, err := h.transcriptSvc.Create(r.Context(), filename, contentType, data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := h.queueClient.EnqueueAudioProcess(queue.AudioProcessPayload{TranscriptID: rec.ID.String()}); err != nil {
		h.transcriptSvc.Fail(r.Context(), rec.ID, "enqueue failed: "+err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     rec.ID.String(),
		"status": models.TranscriptStatusPending,
	})
}

// readUpload parses the multipart form and applies the ingress
// allow-list before anything is written to disk.
func (h *DiarizeHandler) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename, contentType string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return nil, "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return nil, "", "", false
	}
	defer file.Close()

	contentType = header.Header.Get("Content-Type")
	if err := pipeline.ValidateUpload(header.Filename, contentType); err != nil {
		var invalid *pipeline.InvalidUploadError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalid.Reason})
			return nil, "", "", false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, "", "", false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read upload: " + err.Error()})
		return nil, "", "", false
	}
	return data, header.Filename, contentType, true
}
