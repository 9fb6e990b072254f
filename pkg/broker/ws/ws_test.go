package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriber struct {
	subscribed   []string
	unsubscribed []string
}

func (f *fakeSubscriber) Subscribe(_ context.Context, channels ...string) error {
	f.subscribed = append(f.subscribed, channels...)
	return nil
}

func (f *fakeSubscriber) Unsubscribe(_ context.Context, channels ...string) error {
	f.unsubscribed = append(f.unsubscribed, channels...)
	return nil
}

func TestManager_JoinSubscribesUpstreamOnce(t *testing.T) {
	sub := &fakeSubscriber{}
	m := NewManager(sub, zap.NewNop())
	ctx := context.Background()

	a := m.Add("guest", "1", nil)
	b := m.Add("cast", "7", nil)

	require.NoError(t, m.Join(ctx, a, "chat.10"))
	require.NoError(t, m.Join(ctx, b, "chat.10"))

	// Only the first local member triggers a broker subscription.
	assert.Equal(t, []string{"chat.10"}, sub.subscribed)
	assert.Equal(t, 2, m.Members("chat.10"))
}

func TestManager_LeaveUnsubscribesUpstreamLast(t *testing.T) {
	sub := &fakeSubscriber{}
	m := NewManager(sub, zap.NewNop())
	ctx := context.Background()

	a := m.Add("guest", "1", nil)
	b := m.Add("cast", "7", nil)
	require.NoError(t, m.Join(ctx, a, "chat.10"))
	require.NoError(t, m.Join(ctx, b, "chat.10"))

	m.Leave(ctx, a, "chat.10")
	assert.Empty(t, sub.unsubscribed)
	assert.Equal(t, 1, m.Members("chat.10"))

	m.Leave(ctx, b, "chat.10")
	assert.Equal(t, []string{"chat.10"}, sub.unsubscribed)
	assert.Zero(t, m.Members("chat.10"))
}

func TestManager_IndependentChannels(t *testing.T) {
	sub := &fakeSubscriber{}
	m := NewManager(sub, zap.NewNop())
	ctx := context.Background()

	c := m.Add("guest", "1", nil)
	require.NoError(t, m.Join(ctx, c, "guest.1"))
	require.NoError(t, m.Join(ctx, c, "user.1"))

	assert.ElementsMatch(t, []string{"guest.1", "user.1"}, sub.subscribed)

	m.Leave(ctx, c, "guest.1")
	assert.Equal(t, []string{"guest.1"}, sub.unsubscribed)
	assert.Equal(t, 1, m.Members("user.1"))
}

func TestConnection_TouchRefreshesLiveness(t *testing.T) {
	m := NewManager(&fakeSubscriber{}, zap.NewNop())

	c := m.Add("guest", "1", nil)
	assert.False(t, c.idle(time.Minute))

	c.mu.Lock()
	c.lastSeen = time.Now().Add(-time.Hour)
	c.mu.Unlock()
	assert.True(t, c.idle(time.Minute))

	c.Touch()
	assert.False(t, c.idle(time.Minute))
}
