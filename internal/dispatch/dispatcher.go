package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"broadcast-service/internal/channel"
	"broadcast-service/internal/domain"
	"broadcast-service/internal/payload"
	"broadcast-service/pkg/broker"
)

// Mode selects how an event reaches the broker.
type Mode int

const (
	// Immediate publishes on the caller's goroutine; broker errors
	// propagate to the caller.
	Immediate Mode = iota
	// Deferred enqueues a publish job for the worker; failures are the
	// queue's concern, never the caller's.
	Deferred
)

// ModeFor keeps chat message delivery on the request path; everything
// else tolerates queue latency.
func ModeFor(kind domain.EventKind) Mode {
	switch kind {
	case domain.MessageSent, domain.GroupMessageSent:
		return Immediate
	default:
		return Deferred
	}
}

// Job is a deferred publish: the frame is already shaped and marshaled,
// the worker only has to hand it to the broker per channel.
type Job struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	Channels   []string        `json:"channels"`
	Frame      json.RawMessage `json:"frame"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Queue accepts deferred publish jobs.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
}

// EventDispatcher is the single entry point collaborators call after a
// domain mutation.
type EventDispatcher interface {
	Dispatch(ctx context.Context, kind domain.EventKind, s domain.Subject) error
}

type Dispatcher struct {
	transport broker.Transport
	queue     Queue
	logger    *zap.Logger
}

func NewDispatcher(transport broker.Transport, queue Queue, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, queue: queue, logger: logger}
}

// Dispatch resolves channels, shapes the payload once, and delivers per
// the event's mode. Broadcast never owns the domain write: a failure here
// must not roll back the mutation that triggered it.
func (d *Dispatcher) Dispatch(ctx context.Context, kind domain.EventKind, s domain.Subject) error {
	addrs := channel.Resolve(kind, s)
	if len(addrs) == 0 {
		return nil
	}

	body, err := payload.Shape(kind, s)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	frame, err := json.Marshal(broker.Envelope{Event: kind.Name(), Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", kind, err)
	}

	if ModeFor(kind) == Immediate {
		var firstErr error
		for _, a := range addrs {
			if err := d.transport.Publish(ctx, a.String(), frame); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	job := &Job{
		ID:         ulid.Make().String(),
		Event:      kind.Name(),
		Channels:   addressStrings(addrs),
		Frame:      frame,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := d.queue.Enqueue(ctx, job); err != nil {
		// Deferred failures stay off the request path; the pull-based
		// fetch API is the client's fallback.
		d.logger.Error("enqueue failed",
			zap.String("event", job.Event),
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
	return nil
}

func addressStrings(addrs []channel.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}
