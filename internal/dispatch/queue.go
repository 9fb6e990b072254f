package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a list-backed job queue: producers LPUSH, the worker
// BRPOPs, retries park in a ZSET scored by next attempt time.
type RedisQueue struct {
	rdb      *redis.Client
	key      string
	retryKey string
}

func NewRedisQueue(rdb *redis.Client, key, retryKey string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key, retryKey: retryKey}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// Park schedules a failed job for a later attempt.
func (q *RedisQueue) Park(ctx context.Context, job *Job, at float64) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := q.rdb.ZAdd(ctx, q.retryKey, redis.Z{Score: at, Member: data}).Err(); err != nil {
		return fmt.Errorf("park job %s: %w", job.ID, err)
	}
	return nil
}
