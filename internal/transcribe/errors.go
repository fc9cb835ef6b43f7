package transcribe

import (
	"fmt"
	"time"
)

// JobTimeoutError means the remote job never reached a terminal status
// within the polling ceiling. The job is abandoned, not cancelled.
type JobTimeoutError struct {
	JobName string
	Waited  time.Duration
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("transcription job %s timed out after %s", e.JobName, e.Waited)
}

// JobExecutionError means the remote job terminated with a failure
// status. Reason is the provider-reported failure reason, "Unknown"
// when the provider gave none.
type JobExecutionError struct {
	JobName string
	Reason  string
}

func (e *JobExecutionError) Error() string {
	return fmt.Sprintf("transcription job %s failed: %s", e.JobName, e.Reason)
}
