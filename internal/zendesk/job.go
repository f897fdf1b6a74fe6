package zendesk

import (
	"encoding/json"
	"fmt"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
)

func decodeJob(data []byte) (*batch.Job, error) {
	var resp struct {
		JobStatus jobStatus `json:"job_status"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode job status: %w", err)
	}
	if resp.JobStatus.ID == "" {
		return nil, fmt.Errorf("decode job status: missing job id")
	}
	return resp.JobStatus.toJob(), nil
}

func (s jobStatus) toJob() *batch.Job {
	job := &batch.Job{
		ID:       s.ID,
		Status:   batch.Status(s.Status),
		URL:      s.URL,
		Total:    s.Total,
		Progress: s.Progress,
		Message:  s.Message,
	}
	for _, r := range s.Results {
		job.Results = append(job.Results, r.toResult())
	}
	return job
}

// Older payloads omit "success"; a result without an error is then a
// success.
func (r jobResult) toResult() batch.Result {
	errText := r.Error
	if errText == "" {
		errText = r.Errors
	}
	success := errText == ""
	if r.Success != nil {
		success = *r.Success
	}
	return batch.Result{
		ID:      r.ID,
		Index:   r.Index,
		Success: success,
		Status:  r.Status,
		Error:   errText,
		Details: r.Details,
	}
}
