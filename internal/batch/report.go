package batch

// Outcome is the final state of one item.
type Outcome[T any] struct {
	Item    T
	Batch   int
	JobID   string
	Success bool
	Err     error
}

// JobReport describes one submitted batch and the last known state of its
// job. Offset is the position of the first item of the batch in the input.
type JobReport struct {
	Batch  int `json:"batch"`
	Offset int `json:"offset"`
	Size   int `json:"size"`
	Job    Job `json:"job"`
}

// Report aggregates the outcome of a Track call.
type Report[T any] struct {
	Outcomes []Outcome[T]
	// Jobs holds terminal jobs in the order they finished.
	Jobs []JobReport
	// Unresolved holds jobs still pending when tracking stopped early.
	Unresolved []JobReport
	// Rounds is the number of poll rounds performed.
	Rounds int
}

func newReport[T any](items []T, size int) *Report[T] {
	r := &Report[T]{Outcomes: make([]Outcome[T], len(items))}
	for i, item := range items {
		r.Outcomes[i] = Outcome[T]{Item: item, Batch: i / size}
	}
	return r
}

// abandon fails every item of a batch that never produced a job.
func (r *Report[T]) abandon(tb *trackedBatch, err error) {
	for i := tb.offset; i < tb.offset+tb.size; i++ {
		r.Outcomes[i].Success = false
		r.Outcomes[i].Err = err
	}
}

// unresolve records jobs that were still pending when tracking stopped.
func (r *Report[T]) unresolve(pending []*trackedBatch, err error) {
	for _, tb := range pending {
		for i := tb.offset; i < tb.offset+tb.size; i++ {
			r.Outcomes[i].JobID = tb.job.ID
			r.Outcomes[i].Success = false
			r.Outcomes[i].Err = err
		}
		r.Unresolved = append(r.Unresolved, tb.report())
	}
}

// Succeeded returns the number of items updated successfully.
func (r *Report[T]) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of items that were not updated.
func (r *Report[T]) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Failures returns the outcomes of the items that were not updated.
func (r *Report[T]) Failures() []Outcome[T] {
	var failed []Outcome[T]
	for _, o := range r.Outcomes {
		if !o.Success {
			failed = append(failed, o)
		}
	}
	return failed
}
