package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/otoscribe/otoscribe/internal/align"
)

// PyannoteClient talks to a pyannote speaker-diarization sidecar over
// HTTP: multipart wav in, ordered turn list out. Model loading and
// inference live entirely in the sidecar; this process only ever sees
// (start, end, speaker) triples.
type PyannoteClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPyannoteClient(baseURL string) *PyannoteClient {
	return &PyannoteClient{
		baseURL: baseURL,
		// diarization of long recordings is slow; generous ceiling
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (c *PyannoteClient) Name() string { return "pyannote" }

type turnResponse struct {
	Turns []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker string  `json:"speaker"`
	} `json:"turns"`
}

func (c *PyannoteClient) Diarize(ctx context.Context, wavPath string) ([]align.Interval, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("open waveform: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy waveform: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/diarize", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("diarization failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out turnResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}

	timeline := make([]align.Interval, 0, len(out.Turns))
	for _, t := range out.Turns {
		timeline = append(timeline, align.Interval{Start: t.Start, End: t.End, Speaker: t.Speaker})
	}
	return timeline, nil
}
