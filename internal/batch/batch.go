// Package batch submits bulk update requests in bounded batches and tracks
// the asynchronous jobs they create until every job reaches a terminal
// status.
//
// Results are correlated to items by their position inside the batch unless
// the remote system echoes an explicit index, so the order of items is kept
// intact from partitioning through result mapping.
package batch

import (
	"context"
	"errors"
	"time"
)

// MaxSize is the largest number of items the bulk update API accepts in a
// single request.
const MaxSize = 100

const (
	DefaultSize         = MaxSize
	DefaultPollInterval = time.Second
	DefaultMaxRounds    = 600
)

var (
	// ErrInvalidBatchSize is returned before any submission when the batch
	// size is outside 1..MaxSize.
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 100")

	// ErrPollLimit is returned when jobs are still pending after the
	// configured number of poll rounds.
	ErrPollLimit = errors.New("poll limit reached before all jobs finished")

	// ErrNoResult marks an item of a completed job that got no result entry.
	ErrNoResult = errors.New("job reported no result for item")
)

// Partition splits items into contiguous chunks of at most size items. The
// chunks keep the input order and share its backing array.
func Partition[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, ErrInvalidBatchSize
	}
	if len(items) == 0 {
		return nil, nil
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > size {
		batches = append(batches, items[:size:size])
		items = items[size:]
	}
	return append(batches, items), nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
