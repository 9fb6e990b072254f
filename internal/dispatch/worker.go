package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"broadcast-service/pkg/broker"
)

const (
	popTimeout    = 5 * time.Second
	sweepInterval = time.Second
)

// parker schedules a failed job for a later attempt.
type parker interface {
	Park(ctx context.Context, job *Job, at float64) error
}

// Worker drains the deferred queue and publishes each job's frame to its
// channels. Failed channels are retried with exponential backoff until
// MaxAttempts, then dropped; clients fall back to the pull API.
type Worker struct {
	rdb         *redis.Client
	queueKey    string
	retryKey    string
	retries     parker
	transport   broker.Transport
	logger      *zap.Logger
	Consumers   int
	MaxAttempts int
}

func NewWorker(rdb *redis.Client, queue *RedisQueue, transport broker.Transport, logger *zap.Logger, consumers int) *Worker {
	if consumers < 1 {
		consumers = 1
	}
	return &Worker{
		rdb:         rdb,
		queueKey:    queue.key,
		retryKey:    queue.retryKey,
		retries:     queue,
		transport:   transport,
		logger:      logger,
		Consumers:   consumers,
		MaxAttempts: 5,
	}
}

// Run blocks until ctx ends. It starts the consumer pool plus one retry
// sweeper.
func (w *Worker) Run(ctx context.Context) {
	for i := 0; i < w.Consumers; i++ {
		go w.consume(ctx)
	}
	w.sweep(ctx)
}

func (w *Worker) consume(ctx context.Context) {
	for {
		res, err := w.rdb.BRPop(ctx, popTimeout, w.queueKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			w.logger.Warn("queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			w.logger.Error("discarding malformed job", zap.Error(err))
			continue
		}
		w.process(ctx, &job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	var failed []string
	for _, ch := range job.Channels {
		if err := w.transport.Publish(ctx, ch, job.Frame); err != nil {
			failed = append(failed, ch)
		}
	}
	if len(failed) == 0 {
		return
	}

	job.Attempts++
	if job.Attempts >= w.MaxAttempts {
		w.logger.Error("dropping job after max attempts",
			zap.String("job_id", job.ID),
			zap.String("event", job.Event),
			zap.Strings("channels", failed))
		return
	}

	// Only the channels that failed are retried.
	job.Channels = failed
	backoff := time.Duration(1<<uint(job.Attempts)) * time.Second
	at := float64(time.Now().Add(backoff).Unix())
	if err := w.retries.Park(ctx, job, at); err != nil {
		w.logger.Error("park failed, job lost",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}

// sweep moves due retries back onto the queue. Each pass arms exactly one
// follow-up timer; there is no implicit rescheduling path.
func (w *Worker) sweep(ctx context.Context) {
	timer := time.NewTimer(sweepInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		w.requeueDue(ctx)
		timer.Reset(sweepInterval)
	}
}

func (w *Worker) requeueDue(ctx context.Context) {
	now := float64(time.Now().Unix())
	due, err := w.rdb.ZRangeByScore(ctx, w.retryKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatFloat(now, 'f', 0, 64),
	}).Result()
	if err != nil || len(due) == 0 {
		return
	}
	for _, raw := range due {
		if err := w.rdb.LPush(ctx, w.queueKey, raw).Err(); err != nil {
			w.logger.Warn("requeue failed", zap.Error(err))
			continue
		}
		w.rdb.ZRem(ctx, w.retryKey, raw)
	}
}
