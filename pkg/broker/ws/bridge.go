package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBridge carries broker frames from Redis pub/sub into the Manager.
// It holds a single PubSub whose channel set follows local membership.
type RedisBridge struct {
	pubsub *redis.PubSub
	logger *zap.Logger
}

func NewRedisBridge(ctx context.Context, rdb *redis.Client, logger *zap.Logger) *RedisBridge {
	// Subscribe with no channels; Join/Leave grow and shrink the set.
	return &RedisBridge{
		pubsub: rdb.Subscribe(ctx),
		logger: logger,
	}
}

func (b *RedisBridge) Subscribe(ctx context.Context, channels ...string) error {
	return b.pubsub.Subscribe(ctx, channels...)
}

func (b *RedisBridge) Unsubscribe(ctx context.Context, channels ...string) error {
	return b.pubsub.Unsubscribe(ctx, channels...)
}

// Listen pumps frames to the manager until the context ends.
func (b *RedisBridge) Listen(ctx context.Context, m *Manager) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = b.pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			m.Fanout(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}
