package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Submitter is the remote side of a bulk update: it accepts one batch of
// payloads and reports on the resulting job.
type Submitter[P any] interface {
	SubmitBulkUpdate(ctx context.Context, payloads []P) (*Job, error)
	FetchJobStatus(ctx context.Context, id string) (*Job, error)
}

// Config tunes a Tracker. Zero values select the defaults; a negative
// MaxRounds disables the poll bound.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRounds    int
	Sleep        func(ctx context.Context, d time.Duration) error
	Logger       *slog.Logger
}

// Tracker submits items of type T as payloads of type P and waits for the
// resulting jobs. It is not safe for concurrent use.
type Tracker[T, P any] struct {
	submitter Submitter[P]
	config    Config
	logger    *slog.Logger
}

// NewTracker creates a tracker bound to a submitter.
func NewTracker[T, P any](s Submitter[P], cfg Config) *Tracker[T, P] {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker[T, P]{submitter: s, config: cfg, logger: logger}
}

type trackedBatch struct {
	index  int
	offset int
	size   int
	job    Job
}

func (b *trackedBatch) report() JobReport {
	return JobReport{Batch: b.index, Offset: b.offset, Size: b.size, Job: b.job}
}

// Track partitions items, submits one bulk update per batch and polls the
// jobs until all of them are terminal. The report holds one outcome per
// item, in input order. Failures of single jobs or items are reported in the
// outcomes, not as an error; the error is reserved for invalid input, a
// cancelled context and the poll bound, and comes with the partial report
// in the last two cases.
func (t *Tracker[T, P]) Track(ctx context.Context, items []T, mutate func(T) P) (*Report[T], error) {
	if t.config.BatchSize > MaxSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, t.config.BatchSize)
	}
	batches, err := Partition(items, t.config.BatchSize)
	if err != nil {
		return nil, err
	}

	report := newReport(items, t.config.BatchSize)
	pending := make([]*trackedBatch, 0, len(batches))

	offset := 0
	for i, chunk := range batches {
		tb := &trackedBatch{index: i, offset: offset, size: len(chunk)}
		offset += len(chunk)

		if err := ctx.Err(); err != nil {
			report.abandon(tb, err)
			continue
		}

		payloads := make([]P, len(chunk))
		for j, item := range chunk {
			payloads[j] = mutate(item)
		}

		job, err := t.submitter.SubmitBulkUpdate(ctx, payloads)
		if err != nil {
			t.logger.Error("bulk update submission failed", "batch", i, "items", len(chunk), "error", err)
			report.abandon(tb, fmt.Errorf("submit batch %d: %w", i, err))
			continue
		}
		tb.job = *job
		t.logger.Debug("bulk update submitted", "batch", i, "items", len(chunk), "job", job.ID, "status", job.Status)

		if job.Status.Terminal() {
			t.finish(report, tb)
			continue
		}
		pending = append(pending, tb)
	}
	if err := ctx.Err(); err != nil {
		report.unresolve(pending, err)
		return report, err
	}

	for len(pending) > 0 {
		if t.config.MaxRounds > 0 && report.Rounds >= t.config.MaxRounds {
			t.logger.Warn("giving up on pending jobs", "jobs", len(pending), "rounds", report.Rounds)
			report.unresolve(pending, ErrPollLimit)
			return report, ErrPollLimit
		}
		if err := t.config.Sleep(ctx, t.config.PollInterval); err != nil {
			report.unresolve(pending, err)
			return report, err
		}
		report.Rounds++

		next := pending[:0]
		for _, tb := range pending {
			job, err := t.submitter.FetchJobStatus(ctx, tb.job.ID)
			if err != nil {
				t.logger.Warn("job status check failed", "job", tb.job.ID, "round", report.Rounds, "error", err)
				next = append(next, tb)
				continue
			}
			if job.ID == "" {
				job.ID = tb.job.ID
			}
			tb.job = *job

			if job.Status.Terminal() {
				t.finish(report, tb)
				continue
			}
			next = append(next, tb)
		}
		pending = next
	}

	return report, nil
}

// finish folds a terminal job into the report and logs it once.
func (t *Tracker[T, P]) finish(r *Report[T], tb *trackedBatch) {
	job := tb.job
	log := t.logger.With("job", job.ID, "status", string(job.Status), "url", job.URL, "batch", tb.index)

	if len(job.Results) != tb.size {
		log.Warn("job result count differs from batch size", "results", len(job.Results), "items", tb.size)
	}

	matched := make([]bool, tb.size)
	for pos, res := range job.Results {
		idx := pos
		if res.Index != nil {
			idx = *res.Index
		}
		if idx < 0 || idx >= tb.size || matched[idx] {
			log.Warn("job result does not match any item", "result", pos, "index", idx)
			continue
		}
		matched[idx] = true

		if res.Success {
			log.Debug("job result", "result", pos, "success", true)
		} else {
			log.Warn("job result", "result", pos, "success", false, "error", res.Error, "details", res.Details)
		}

		o := &r.Outcomes[tb.offset+idx]
		o.JobID = job.ID
		o.Success = res.Success
		o.Err = nil
		if !res.Success {
			detail := res.Error
			if res.Details != "" {
				if detail != "" {
					detail += ": "
				}
				detail += res.Details
			}
			o.Err = &ResultError{JobID: job.ID, Status: res.Status, Detail: detail}
		}
	}

	for idx, ok := range matched {
		if ok {
			continue
		}
		o := &r.Outcomes[tb.offset+idx]
		o.JobID = job.ID
		o.Success = false
		if job.Status == StatusCompleted {
			o.Err = ErrNoResult
		} else {
			o.Err = &JobError{JobID: job.ID, Status: job.Status, Message: job.Message}
		}
	}

	succeeded := 0
	for _, o := range r.Outcomes[tb.offset : tb.offset+tb.size] {
		if o.Success {
			succeeded++
		}
	}
	failed := tb.size - succeeded
	if job.Status == StatusCompleted && failed == 0 {
		log.Info("job finished", "results", len(job.Results), "succeeded", succeeded, "failed", failed)
	} else {
		log.Warn("job finished", "results", len(job.Results), "succeeded", succeeded, "failed", failed, "message", job.Message)
	}

	r.Jobs = append(r.Jobs, tb.report())
}
