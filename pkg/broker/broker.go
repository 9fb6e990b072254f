package broker

import (
	"context"
	"encoding/json"
)

// Envelope is the wire frame published to every channel an event resolves
// to. Payload is pre-marshaled by the dispatcher so each channel receives
// byte-identical content.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Transport hands a frame to the pub/sub broker. Publish confirms
// acceptance by the broker, not delivery to subscribers.
type Transport interface {
	Publish(ctx context.Context, channel string, data []byte) error
}
