package notify

import (
	"context"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"portfolio-backend/app/server/types"
	"testing"
	"time"
)

func newTestRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisQueue(rdb, "test:notify"), mr
}

func TestRedisQueueFIFO(t *testing.T) {
	q, _ := newTestRedisQueue(t)
	ctx := context.Background()

	first := &types.NotificationJob{ID: uuid.New(), ContactID: 1, Subject: "first"}
	second := &types.NotificationJob{ID: uuid.New(), ContactID: 2, Subject: "second"}
	require.NoError(t, q.Push(ctx, first))
	require.NoError(t, q.Push(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "first", got.Subject)

	got, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestRedisQueuePopEmpty(t *testing.T) {
	q, _ := newTestRedisQueue(t)

	_, err := q.Pop(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRedisQueueRejectsCorruptPayload(t *testing.T) {
	q, mr := newTestRedisQueue(t)

	_, err := mr.Lpush("test:notify", "{not json")
	require.NoError(t, err)

	_, err = q.Pop(context.Background(), time.Second)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrQueueEmpty)
}

func TestRedisQueuePushFailsWhenRedisDown(t *testing.T) {
	q, mr := newTestRedisQueue(t)
	mr.Close()

	err := q.Push(context.Background(), &types.NotificationJob{ID: uuid.New()})
	assert.Error(t, err)
}
