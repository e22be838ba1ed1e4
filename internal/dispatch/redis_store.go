package dispatch

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

const (
	keyScheduled = "automation:scheduled" // ZSET: job id scored by not-before (unix ms)
	keyReady     = "automation:ready"     // ZSET: due job ids scored by (priority, seq)
	keyJobs      = "automation:jobs"      // HASH: job id -> JSON
	keySeq       = "automation:seq"

	promoteBatch = 100
	// Seq values stay well below this, so priority dominates the composite
	// ready score and enqueue order breaks ties.
	prioritySlot = 1e12
)

// RedisStore is the durable JobStore backend. Delayed jobs sit in a
// schedule ZSET keyed by absolute not-before time; due jobs are promoted to
// a ready ZSET ordered by priority then enqueue sequence, so a large backlog
// of future jobs never occupies a worker.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Enqueue(ctx context.Context, job *Job) error {
	seq, err := s.rdb.Incr(ctx, keySeq).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to allocate job sequence")
	}
	job.Seq = uint64(seq)

	b, err := json.Marshal(job)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal job", goerr.V("job_id", job.ID))
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, keyJobs, job.ID, b)
	pipe.ZAdd(ctx, keyScheduled, redis.Z{
		Score:  float64(job.NotBefore.UnixMilli()),
		Member: job.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to enqueue job", goerr.V("job_id", job.ID))
	}
	return nil
}

func (s *RedisStore) Dequeue(ctx context.Context, now time.Time) (*Job, bool, error) {
	if err := s.promote(ctx, now); err != nil {
		return nil, false, err
	}

	popped, err := s.rdb.ZPopMin(ctx, keyReady, 1).Result()
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to pop ready job")
	}
	if len(popped) == 0 {
		return nil, false, nil
	}

	jobID, _ := popped[0].Member.(string)
	raw, err := s.rdb.HGet(ctx, keyJobs, jobID).Result()
	if err == redis.Nil {
		// Job body already gone; treat the claim as consumed.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to load job body", goerr.V("job_id", jobID))
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		s.rdb.HDel(ctx, keyJobs, jobID)
		return nil, false, goerr.Wrap(err, "failed to unmarshal job", goerr.V("job_id", jobID))
	}
	return &job, true, nil
}

// promote moves due jobs from the schedule to the ready queue. Concurrent
// promotion by multiple workers is harmless: ZADD/ZREM are idempotent per
// member.
func (s *RedisStore) promote(ctx context.Context, now time.Time) error {
	due, err := s.rdb.ZRangeByScore(ctx, keyScheduled, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: promoteBatch,
	}).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to scan due jobs")
	}

	for _, jobID := range due {
		raw, err := s.rdb.HGet(ctx, keyJobs, jobID).Result()
		if err == redis.Nil {
			s.rdb.ZRem(ctx, keyScheduled, jobID)
			continue
		}
		if err != nil {
			return goerr.Wrap(err, "failed to load due job", goerr.V("job_id", jobID))
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			s.rdb.ZRem(ctx, keyScheduled, jobID)
			s.rdb.HDel(ctx, keyJobs, jobID)
			continue
		}

		pipe := s.rdb.TxPipeline()
		pipe.ZAdd(ctx, keyReady, redis.Z{
			Score:  float64(job.Priority)*prioritySlot + float64(job.Seq),
			Member: jobID,
		})
		pipe.ZRem(ctx, keyScheduled, jobID)
		if _, err := pipe.Exec(ctx); err != nil {
			return goerr.Wrap(err, "failed to promote job", goerr.V("job_id", jobID))
		}
	}
	return nil
}

func (s *RedisStore) Ack(ctx context.Context, jobID string) error {
	if err := s.rdb.HDel(ctx, keyJobs, jobID).Err(); err != nil {
		return goerr.Wrap(err, "failed to ack job", goerr.V("job_id", jobID))
	}
	return nil
}

func (s *RedisStore) Nack(ctx context.Context, job *Job) error {
	job.Attempts++
	if job.Attempts >= maxAttempts {
		return s.Ack(ctx, job.ID)
	}
	job.NotBefore = time.Now().UTC().Add(backoffFor(job.Attempts))

	b, err := json.Marshal(job)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal job for retry", goerr.V("job_id", job.ID))
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, keyJobs, job.ID, b)
	pipe.ZAdd(ctx, keyScheduled, redis.Z{
		Score:  float64(job.NotBefore.UnixMilli()),
		Member: job.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to reschedule job", goerr.V("job_id", job.ID))
	}
	return nil
}

func (s *RedisStore) Pending(ctx context.Context) (int, error) {
	scheduled, err := s.rdb.ZCard(ctx, keyScheduled).Result()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count scheduled jobs")
	}
	ready, err := s.rdb.ZCard(ctx, keyReady).Result()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count ready jobs")
	}
	return int(scheduled + ready), nil
}
