package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps websocket.Conn with subscriber identity and the set of
// channels it has joined.
type Connection struct {
	Conn     *websocket.Conn
	UserType string
	UserID   string

	mu       sync.Mutex
	lastSeen time.Time
	channels map[string]struct{}
}

// Touch records client liveness; the read pump calls it on every frame
// and pong while Heartbeat reads it from its own goroutine.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Connection) idle(maxAge time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastSeen) > maxAge
}

// send serializes socket writes; the broker fanout and the handler's ack
// frames share the connection.
func (c *Connection) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// SendJSON writes a control/ack frame to the client.
func (c *Connection) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Subscriber is the upstream side of the bridge: the manager asks it to
// start or stop receiving a broker channel as local membership changes.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error
}

// Manager tracks which sockets listen on which channel addresses and fans
// incoming broker frames out to them.
type Manager struct {
	mu      sync.RWMutex
	members map[string]map[*Connection]struct{} // channel -> set of connections
	sub     Subscriber
	logger  *zap.Logger
}

func NewManager(sub Subscriber, logger *zap.Logger) *Manager {
	return &Manager{
		members: make(map[string]map[*Connection]struct{}),
		sub:     sub,
		logger:  logger,
	}
}

// Add registers a socket. It joins no channels until Join is called.
func (m *Manager) Add(userType, userID string, conn *websocket.Conn) *Connection {
	c := &Connection{
		Conn:     conn,
		UserType: userType,
		UserID:   userID,
		lastSeen: time.Now(),
		channels: make(map[string]struct{}),
	}
	m.logger.Info("ws connected",
		zap.String("user_type", userType),
		zap.String("user_id", userID))
	return c
}

// Join subscribes a socket to a channel address. The first local member
// of a channel triggers an upstream broker subscription.
func (m *Manager) Join(ctx context.Context, c *Connection, channel string) error {
	m.mu.Lock()
	conns, ok := m.members[channel]
	if !ok {
		conns = make(map[*Connection]struct{})
		m.members[channel] = conns
	}
	first := len(conns) == 0
	conns[c] = struct{}{}
	m.mu.Unlock()

	c.mu.Lock()
	c.channels[channel] = struct{}{}
	c.mu.Unlock()

	if first {
		if err := m.sub.Subscribe(ctx, channel); err != nil {
			m.logger.Warn("broker subscribe failed", zap.String("channel", channel), zap.Error(err))
			return err
		}
	}
	return nil
}

// Leave removes a socket from a channel; the last local member triggers
// an upstream unsubscribe.
func (m *Manager) Leave(ctx context.Context, c *Connection, channel string) {
	m.mu.Lock()
	last := false
	if conns, ok := m.members[channel]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.members, channel)
			last = true
		}
	}
	m.mu.Unlock()

	c.mu.Lock()
	delete(c.channels, channel)
	c.mu.Unlock()

	if last {
		if err := m.sub.Unsubscribe(ctx, channel); err != nil {
			m.logger.Warn("broker unsubscribe failed", zap.String("channel", channel), zap.Error(err))
		}
	}
}

// Remove detaches a socket from every channel and closes it.
func (m *Manager) Remove(ctx context.Context, c *Connection) {
	c.mu.Lock()
	channels := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		channels = append(channels, ch)
	}
	c.mu.Unlock()

	for _, ch := range channels {
		m.Leave(ctx, c, ch)
	}
	_ = c.Conn.Close()
	m.logger.Info("ws disconnected",
		zap.String("user_type", c.UserType),
		zap.String("user_id", c.UserID))
}

// Fanout writes a broker frame to every local member of a channel.
func (m *Manager) Fanout(ctx context.Context, channel string, data []byte) {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.members[channel]))
	for c := range m.members[channel] {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		if err := c.send(data); err != nil {
			m.logger.Warn("ws send failed", zap.String("channel", channel), zap.Error(err))
			go m.Remove(ctx, c)
		}
	}
}

// Members reports how many sockets currently listen on a channel.
func (m *Manager) Members(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members[channel])
}

// Heartbeat pings all connections periodically and drops stale ones.
func (m *Manager) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		m.mu.RLock()
		seen := make(map[*Connection]struct{})
		for _, conns := range m.members {
			for c := range conns {
				seen[c] = struct{}{}
			}
		}
		m.mu.RUnlock()

		for c := range seen {
			if c.idle(2 * interval) {
				go m.Remove(ctx, c)
				continue
			}
			_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
		}
	}
}
