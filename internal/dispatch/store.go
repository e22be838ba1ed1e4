package dispatch

import (
	"context"
	"time"
)

// Retry backoff bounds. Attempts double the delay up to the cap.
const (
	retryBackoffBase = 30 * time.Second
	retryBackoffCap  = time.Hour
	maxAttempts      = 8
)

// JobStore is the durable scheduling backend. Among jobs whose not-before
// time has elapsed, Dequeue returns the one with the lowest priority number,
// ties broken by enqueue order. Future jobs are never returned early.
type JobStore interface {
	Enqueue(ctx context.Context, job *Job) error
	// Dequeue claims the next due job, or reports false when none is due.
	Dequeue(ctx context.Context, now time.Time) (*Job, bool, error)
	// Ack discards a claimed job permanently.
	Ack(ctx context.Context, jobID string) error
	// Nack reschedules a claimed job with exponential backoff. Jobs past the
	// attempt limit are dropped.
	Nack(ctx context.Context, job *Job) error
	// Pending counts jobs waiting in the store, due or not.
	Pending(ctx context.Context) (int, error)
}

func backoffFor(attempts int) time.Duration {
	d := retryBackoffBase << uint(attempts)
	if d > retryBackoffCap || d <= 0 {
		return retryBackoffCap
	}
	return d
}
