package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"broadcast-service/internal/domain"
)

// loggingDispatcher keeps observability out of the resolve/shape logic.
type loggingDispatcher struct {
	next   EventDispatcher
	logger *zap.Logger
}

// WithLogging decorates a dispatcher with structured dispatch logs.
func WithLogging(next EventDispatcher, logger *zap.Logger) EventDispatcher {
	return &loggingDispatcher{next: next, logger: logger}
}

func (d *loggingDispatcher) Dispatch(ctx context.Context, kind domain.EventKind, s domain.Subject) error {
	start := time.Now()
	err := d.next.Dispatch(ctx, kind, s)
	fields := []zap.Field{
		zap.String("event", kind.Name()),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		d.logger.Warn("dispatch failed", append(fields, zap.Error(err))...)
		return err
	}
	d.logger.Info("dispatched", fields...)
	return nil
}
