package dispatch

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process JobStore used in tests and in dev mode when
// no Redis address is configured. Scheduling semantics match the Redis store.
type MemoryStore struct {
	mu      sync.Mutex
	seq     uint64
	waiting []*Job
	claimed map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claimed: make(map[string]*Job)}
}

func (s *MemoryStore) Enqueue(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	job.Seq = s.seq
	s.waiting = append(s.waiting, job)
	return nil
}

func (s *MemoryStore) Dequeue(ctx context.Context, now time.Time) (*Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := -1
	for i, j := range s.waiting {
		if j.NotBefore.After(now) {
			continue
		}
		if best == -1 || less(j, s.waiting[best]) {
			best = i
		}
	}
	if best == -1 {
		return nil, false, nil
	}

	job := s.waiting[best]
	s.waiting = append(s.waiting[:best], s.waiting[best+1:]...)
	s.claimed[job.ID] = job
	return job, true, nil
}

func less(a, b *Job) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Seq < b.Seq
}

func (s *MemoryStore) Ack(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, jobID)
	return nil
}

func (s *MemoryStore) Nack(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, job.ID)

	job.Attempts++
	if job.Attempts >= maxAttempts {
		return nil
	}
	job.NotBefore = time.Now().UTC().Add(backoffFor(job.Attempts))
	s.waiting = append(s.waiting, job)
	return nil
}

func (s *MemoryStore) Pending(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting), nil
}
