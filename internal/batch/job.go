package batch

import "fmt"

// Status is the remote state of a job. The set is vendor defined; only the
// terminal/non-terminal split matters to the tracker.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusWorking   Status = "working"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusKilled    Status = "killed"
)

// Terminal reports whether the job can no longer change state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusKilled:
		return true
	}
	return false
}

// Job is one asynchronous bulk update as reported by the remote system.
type Job struct {
	ID       string   `json:"id"`
	Status   Status   `json:"status"`
	URL      string   `json:"url,omitempty"`
	Total    int      `json:"total,omitempty"`
	Progress int      `json:"progress,omitempty"`
	Message  string   `json:"message,omitempty"`
	Results  []Result `json:"results,omitempty"`
}

// Result is the outcome of a single item inside a terminal job. Index is set
// only when the remote system echoes the item position.
type Result struct {
	ID      int64  `json:"id,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// ResultError is the outcome error of an item the remote system refused.
type ResultError struct {
	JobID  string
	Status string
	Detail string
}

func (e *ResultError) Error() string {
	msg := fmt.Sprintf("job %s: item not updated", e.JobID)
	if e.Status != "" {
		msg += " (" + e.Status + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// JobError is the outcome error of an item whose job ended failed or killed
// without a successful result for it.
type JobError struct {
	JobID   string
	Status  Status
	Message string
}

func (e *JobError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("job %s %s: %s", e.JobID, e.Status, e.Message)
	}
	return fmt.Sprintf("job %s %s", e.JobID, e.Status)
}
