package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"portfolio-backend/app/server/types"
	"time"
)

// ErrQueueEmpty 表示在等待时间内没有取到任务
var ErrQueueEmpty = errors.New("queue empty")

type Queue interface {
	Push(ctx context.Context, job *types.NotificationJob) error
	Pop(ctx context.Context, timeout time.Duration) (*types.NotificationJob, error)
}

// RedisQueue 使用 LPUSH / BRPOP 实现先进先出
type RedisQueue struct {
	rdb redis.UniversalClient
	key string
}

func NewRedisQueue(rdb redis.UniversalClient, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, job *types.NotificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err = q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*types.NotificationJob, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("pop job: %w", err)
	}

	// BRPOP 返回 [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected pop result length %d", len(res))
	}

	var job types.NotificationJob
	if err = json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
