package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTransport publishes frames through Redis pub/sub. The WebSocket
// edge (and any other interested process) subscribes on the same channel
// names and fans out to sockets.
type RedisTransport struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisTransport(rdb *redis.Client, logger *zap.Logger) *RedisTransport {
	return &RedisTransport{rdb: rdb, logger: logger}
}

func (t *RedisTransport) Publish(ctx context.Context, channel string, data []byte) error {
	if err := t.rdb.Publish(ctx, channel, data).Err(); err != nil {
		t.logger.Warn("publish failed",
			zap.String("channel", channel),
			zap.Error(err))
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
