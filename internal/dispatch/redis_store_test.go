package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

func TestRedisStorePriorityThenFIFO(t *testing.T) {
	ctx := context.Background()
	rs := newRedisStore(t)
	q := NewQueue(rs, zerolog.Nop())

	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "a"}, Options{Priority: 5}))
	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "b"}, Options{Priority: 1}))
	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "c"}, Options{Priority: 1}))

	now := time.Now().UTC()
	var order []string
	for {
		job, ok, err := rs.Dequeue(ctx, now)
		require.NoError(t, err)
		if !ok {
			break
		}
		order = append(order, job.SMS.To)
		require.NoError(t, rs.Ack(ctx, job.ID))
	}
	require.Equal(t, []string{"b", "c", "a"}, order)
}

func TestRedisStoreDelayHoldsJob(t *testing.T) {
	ctx := context.Background()
	rs := newRedisStore(t)
	q := NewQueue(rs, zerolog.Nop())

	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "x", Message: "later"}, Options{Delay: time.Hour}))

	_, ok, err := rs.Dequeue(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.False(t, ok, "delayed job must not dispatch early")

	job, ok, err := rs.Dequeue(ctx, time.Now().UTC().Add(2*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "later", job.SMS.Message)
}

func TestRedisStoreNackReschedules(t *testing.T) {
	ctx := context.Background()
	rs := newRedisStore(t)
	q := NewQueue(rs, zerolog.Nop())

	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "x"}, Options{}))
	job, ok, err := rs.Dequeue(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, rs.Nack(ctx, job))
	require.Equal(t, 1, job.Attempts)

	_, ok, err = rs.Dequeue(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.False(t, ok, "nacked job must wait out its backoff")

	reclaimed, ok, err := rs.Dequeue(ctx, time.Now().UTC().Add(2*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, job.ID, reclaimed.ID)
	require.Equal(t, 1, reclaimed.Attempts)
}

func TestRedisStoreNackDropsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	rs := newRedisStore(t)
	q := NewQueue(rs, zerolog.Nop())

	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "x"}, Options{}))
	job, ok, err := rs.Dequeue(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, ok)

	job.Attempts = maxAttempts - 1
	require.NoError(t, rs.Nack(ctx, job))

	pending, err := rs.Pending(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, pending)
}

func TestRedisStorePendingCountsScheduledAndReady(t *testing.T) {
	ctx := context.Background()
	rs := newRedisStore(t)
	q := NewQueue(rs, zerolog.Nop())

	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "due"}, Options{}))
	require.NoError(t, q.EnqueueSMS(ctx, SMSPayload{To: "future"}, Options{Delay: time.Hour}))

	pending, err := rs.Pending(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, pending)
}
