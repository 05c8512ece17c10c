package worker

import (
	"context"
	"log/slog"

	audit "stacia/pkg/platform/audit"
	"stacia/pkg/platform/circuit"
)

// Worker drains the publisher outbox into sinks. Sink failures are logged
// and skipped; the events are already persisted in the audit store. Each
// sink sits behind a breaker so a dead broker is not retried per event.
type Worker struct {
	inbox       <-chan audit.Event
	sinks       []guardedSink
	logger      *slog.Logger
	breakerOpts []circuit.Option
}

type guardedSink struct {
	sink    audit.Sink
	breaker *circuit.Breaker
}

type Option func(*Worker)

func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(w *Worker) {
		w.breakerOpts = append(w.breakerOpts, opts...)
	}
}

func NewWorker(inbox <-chan audit.Event, logger *slog.Logger, sinks []audit.Sink, opts ...Option) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{inbox: inbox, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	for _, sink := range sinks {
		w.sinks = append(w.sinks, guardedSink{
			sink:    sink,
			breaker: circuit.New(sink.Name(), w.breakerOpts...),
		})
	}
	return w
}

// Run blocks until ctx is cancelled or the inbox is closed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.dispatch(ctx, event)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, event audit.Event) {
	for _, g := range w.sinks {
		if !g.breaker.Allow() {
			continue
		}
		if err := g.sink.Publish(ctx, event); err != nil {
			_, change := g.breaker.RecordFailure()
			w.logger.WarnContext(ctx, "audit sink publish failed",
				"sink", g.sink.Name(),
				"action", event.Action,
				"event_id", event.ID,
				"error", err,
			)
			if change.Opened {
				w.logger.ErrorContext(ctx, "audit sink circuit opened", "sink", g.sink.Name())
			}
			continue
		}
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			w.logger.InfoContext(ctx, "audit sink circuit closed", "sink", g.sink.Name())
		}
	}
}
