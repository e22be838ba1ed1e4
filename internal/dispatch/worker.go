package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/errs"
)

const defaultPollInterval = time.Second

// WorkerPool pulls due jobs from the store and executes them through the
// processor. Multiple workers run concurrently; handlers make no exclusivity
// assumptions beyond per-record atomic updates.
type WorkerPool struct {
	store     JobStore
	processor *Processor
	logger    zerolog.Logger

	workers      int
	pollInterval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

func NewWorkerPool(store JobStore, processor *Processor, workers int, pollInterval time.Duration, logger zerolog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 2
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &WorkerPool{
		store:        store,
		processor:    processor,
		logger:       logger,
		workers:      workers,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	p.logger.Info().Int("workers", p.workers).Dur("poll_interval", p.pollInterval).Msg("dispatch workers started")
}

// Stop waits for in-flight jobs to finish. Jobs already claimed run to
// completion or failure; there is no cancellation of dispatched jobs.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
	p.logger.Info().Msg("dispatch workers stopped")
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.drain(ctx)
	for {
		select {
		case <-ticker.C:
			p.drain(ctx)
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) drain(ctx context.Context) {
	for {
		select {
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		job, ok, err := p.store.Dequeue(ctx, time.Now().UTC())
		if err != nil {
			p.logger.Error().Err(err).Msg("failed to dequeue job")
			return
		}
		if !ok {
			return
		}
		p.execute(ctx, job)
	}
}

func (p *WorkerPool) execute(ctx context.Context, job *Job) {
	err := p.processor.Process(ctx, job)
	switch {
	case err == nil:
		if ackErr := p.store.Ack(ctx, job.ID); ackErr != nil {
			p.logger.Error().Err(ackErr).Str("job_id", job.ID).Msg("failed to ack job")
		}
		jobsProcessed.WithLabelValues(string(job.Kind), "ok").Inc()

	case errs.Is(err, errs.TagTemplate):
		// Terminal for this job: log, no retry.
		p.logger.Warn().Err(err).Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("job skipped")
		if ackErr := p.store.Ack(ctx, job.ID); ackErr != nil {
			p.logger.Error().Err(ackErr).Str("job_id", job.ID).Msg("failed to ack skipped job")
		}
		jobsProcessed.WithLabelValues(string(job.Kind), "skipped").Inc()

	default:
		p.logger.Error().Err(err).
			Str("job_id", job.ID).
			Str("kind", string(job.Kind)).
			Int("attempts", job.Attempts).
			Msg("job failed, rescheduling")
		if nackErr := p.store.Nack(ctx, job); nackErr != nil {
			p.logger.Error().Err(nackErr).Str("job_id", job.ID).Msg("failed to reschedule job")
		}
		jobsProcessed.WithLabelValues(string(job.Kind), "retried").Inc()
	}
}
