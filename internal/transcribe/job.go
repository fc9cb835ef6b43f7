package transcribe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// JobStatus is the remote job lifecycle state as reported by the
// provider.
type JobStatus string

const (
	StatusQueued     JobStatus = "QUEUED"
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// Job is one poll snapshot of a remote transcription job.
type Job struct {
	Name          string
	Status        JobStatus
	ResultURI     string
	FailureReason string
}

// StartJobRequest carries everything needed to submit a remote job.
// ShowSpeakerLabels asks the engine to label speakers itself; that is
// only wanted when no local diarization runs.
type StartJobRequest struct {
	Name              string
	LanguageCode      string
	MediaURI          string
	ShowSpeakerLabels bool
	MaxSpeakerLabels  int32
}

// JobAPI is the narrow surface of the remote transcription provider
// the Runner needs; tests supply scripted fakes.
type JobAPI interface {
	Start(ctx context.Context, req StartJobRequest) error
	Status(ctx context.Context, name string) (Job, error)
}

const (
	defaultPollInterval = 5 * time.Second
	defaultJobTimeout   = 600 * time.Second
)

// Runner drives a remote transcription job to completion: submit, poll
// until terminal or the ceiling is hit, then fetch and parse the
// result document. There is no retry; timeout and failure are terminal
// for a request.
type Runner struct {
	api          JobAPI
	httpClient   *http.Client
	pollInterval time.Duration
	timeout      time.Duration

	// overridable in tests to simulate elapsed time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(api JobAPI) *Runner {
	return &Runner{
		api:          api,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: defaultPollInterval,
		timeout:      defaultJobTimeout,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// Run executes the full job lifecycle and returns the parsed word
// stream. When req.ShowSpeakerLabels is set the result also carries a
// provider-label speaker timeline.
func (r *Runner) Run(ctx context.Context, req StartJobRequest) (*Result, error) {
	if err := r.api.Start(ctx, req); err != nil {
		return nil, fmt.Errorf("start transcription job: %w", err)
	}
	slog.Info("transcription job submitted", "job", req.Name, "media_uri", req.MediaURI)

	job, err := r.poll(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	if job.Status == StatusFailed {
		reason := job.FailureReason
		if reason == "" {
			reason = "Unknown"
		}
		return nil, &JobExecutionError{JobName: req.Name, Reason: reason}
	}

	data, err := r.fetch(ctx, job.ResultURI)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for job %s: %w", req.Name, err)
	}

	res, err := ParseResult(data, req.ShowSpeakerLabels)
	if err != nil {
		return nil, fmt.Errorf("parse transcript for job %s: %w", req.Name, err)
	}
	return res, nil
}

func (r *Runner) poll(ctx context.Context, name string) (Job, error) {
	start := r.now()
	for r.now().Sub(start) < r.timeout {
		job, err := r.api.Status(ctx, name)
		if err != nil {
			return Job{}, fmt.Errorf("poll job %s: %w", name, err)
		}
		if job.Status == StatusCompleted || job.Status == StatusFailed {
			return job, nil
		}
		if err := r.sleep(ctx, r.pollInterval); err != nil {
			return Job{}, err
		}
	}
	return Job{}, &JobTimeoutError{JobName: name, Waited: r.timeout}
}

func (r *Runner) fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcript fetch returned %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
