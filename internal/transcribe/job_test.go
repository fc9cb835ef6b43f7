package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const minimalTranscript = `{
	"results": {
		"items": [
			{"type": "pronunciation", "start_time": "0.0", "end_time": "0.5",
			 "alternatives": [{"content": "hello"}]},
			{"type": "pronunciation", "start_time": "0.6", "end_time": "1.0",
			 "alternatives": [{"content": "world"}]}
		]
	}
}`

type scriptedAPI struct {
	started  []StartJobRequest
	statuses []Job
	next     int
	startErr error
}

func (s *scriptedAPI) Start(ctx context.Context, req StartJobRequest) error {
	s.started = append(s.started, req)
	return s.startErr
}

func (s *scriptedAPI) Status(ctx context.Context, name string) (Job, error) {
	if s.next >= len(s.statuses) {
		return s.statuses[len(s.statuses)-1], nil
	}
	job := s.statuses[s.next]
	s.next++
	return job, nil
}

// fakeClock advances only when the runner sleeps, so timeout paths run
// without real delay.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.t = c.t.Add(d)
	return nil
}

func newTestRunner(api JobAPI) (*Runner, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	r := NewRunner(api)
	r.now = clock.now
	r.sleep = clock.sleep
	return r, clock
}

func TestRunner_PollsUntilCompletedAndFetchesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalTranscript))
	}))
	defer srv.Close()

	api := &scriptedAPI{statuses: []Job{
		{Name: "j", Status: StatusInProgress},
		{Name: "j", Status: StatusInProgress},
		{Name: "j", Status: StatusCompleted, ResultURI: srv.URL},
	}}
	r, _ := newTestRunner(api)

	res, err := r.Run(context.Background(), StartJobRequest{Name: "j", LanguageCode: "ja-JP", MediaURI: "s3://b/k"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("parsed %d words, want 2", len(res.Words))
	}
	if res.Words[0].Text != "hello" || res.Words[1].Text != "world" {
		t.Errorf("words = %+v", res.Words)
	}
	if len(api.started) != 1 || api.started[0].Name != "j" {
		t.Errorf("submitted jobs = %+v", api.started)
	}
}

func TestRunner_FailedJobCarriesProviderReason(t *testing.T) {
	api := &scriptedAPI{statuses: []Job{
		{Name: "j", Status: StatusFailed, FailureReason: "Bad audio"},
	}}
	r, _ := newTestRunner(api)

	_, err := r.Run(context.Background(), StartJobRequest{Name: "j"})
	var execErr *JobExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected JobExecutionError, got %v", err)
	}
	if execErr.Reason != "Bad audio" {
		t.Errorf("reason = %q, want %q", execErr.Reason, "Bad audio")
	}
}

func TestRunner_FailedJobWithoutReasonReportsUnknown(t *testing.T) {
	api := &scriptedAPI{statuses: []Job{{Name: "j", Status: StatusFailed}}}
	r, _ := newTestRunner(api)

	_, err := r.Run(context.Background(), StartJobRequest{Name: "j"})
	var execErr *JobExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected JobExecutionError, got %v", err)
	}
	if execErr.Reason != "Unknown" {
		t.Errorf("reason = %q, want Unknown", execErr.Reason)
	}
}

func TestRunner_NonTerminalJobTimesOut(t *testing.T) {
	api := &scriptedAPI{statuses: []Job{{Name: "j", Status: StatusInProgress}}}
	r, clock := newTestRunner(api)

	_, err := r.Run(context.Background(), StartJobRequest{Name: "j"})
	var timeoutErr *JobTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected JobTimeoutError, got %v", err)
	}
	if clock.t.Sub(time.Unix(0, 0)) < r.timeout {
		t.Errorf("gave up after %s, before the %s ceiling", clock.t.Sub(time.Unix(0, 0)), r.timeout)
	}
}

func TestRunner_SubmitFailureDoesNotPoll(t *testing.T) {
	api := &scriptedAPI{startErr: errors.New("throttled")}
	r, _ := newTestRunner(api)

	_, err := r.Run(context.Background(), StartJobRequest{Name: "j"})
	if err == nil {
		t.Fatal("expected error")
	}
	if api.next != 0 {
		t.Errorf("status polled %d times after failed submit", api.next)
	}
}
