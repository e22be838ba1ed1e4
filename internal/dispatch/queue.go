package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Queue is the enqueue-side client. Enqueue is fire-and-forget: the job is
// durably scheduled and the caller returns immediately.
type Queue struct {
	store  JobStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewQueue(store JobStore, logger zerolog.Logger) *Queue {
	return &Queue{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (q *Queue) Enqueue(ctx context.Context, job Job, opts Options) error {
	now := q.now()
	job.ID = uuid.NewString()
	job.Priority = opts.Priority
	job.EnqueuedAt = now
	job.NotBefore = now.Add(opts.Delay)

	if err := q.store.Enqueue(ctx, &job); err != nil {
		return err
	}

	jobsEnqueued.WithLabelValues(string(job.Kind)).Inc()
	q.logger.Debug().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("priority", job.Priority).
		Time("not_before", job.NotBefore).
		Msg("job enqueued")
	return nil
}

func (q *Queue) EnqueueEmail(ctx context.Context, p EmailPayload, opts Options) error {
	return q.Enqueue(ctx, Job{Kind: KindSendEmail, Email: &p}, opts)
}

func (q *Queue) EnqueueSMS(ctx context.Context, p SMSPayload, opts Options) error {
	return q.Enqueue(ctx, Job{Kind: KindSendSMS, SMS: &p}, opts)
}

func (q *Queue) EnqueueAlert(ctx context.Context, p AlertPayload, opts Options) error {
	return q.Enqueue(ctx, Job{Kind: KindSendUrgentAlert, Alert: &p}, opts)
}

func (q *Queue) EnqueueFollowUp(ctx context.Context, p FollowUpPayload, opts Options) error {
	return q.Enqueue(ctx, Job{Kind: KindFollowUp, FollowUp: &p}, opts)
}

func (q *Queue) Pending(ctx context.Context) (int, error) {
	return q.store.Pending(ctx)
}
