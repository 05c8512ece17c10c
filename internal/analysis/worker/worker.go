package worker

import (
	"context"
	"log/slog"
	"time"
)

// Ticker advances all running analyses at the given instant.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) (int, error)
}

// Worker drives the analysis clock. The service never owns a timer; ticks
// come from a time.Ticker or, in tests, from an injected channel.
type Worker struct {
	service  Ticker
	interval time.Duration
	ticks    <-chan time.Time
	logger   *slog.Logger
}

type Option func(w *Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithTickSource replaces the wall-clock ticker.
func WithTickSource(ticks <-chan time.Time) Option {
	return func(w *Worker) {
		w.ticks = ticks
	}
}

func New(service Ticker, interval time.Duration, opts ...Option) *Worker {
	w := &Worker{
		service:  service,
		interval: interval,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Run ticks until ctx is cancelled or the tick source closes. Tick errors
// are logged and the loop continues.
func (w *Worker) Run(ctx context.Context) error {
	ticks := w.ticks
	if ticks == nil {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	w.logger.InfoContext(ctx, "analysis worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "analysis worker stopped")
			return nil
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			if _, err := w.service.Tick(ctx, now); err != nil {
				w.logger.ErrorContext(ctx, "analysis tick failed", "error", err)
			}
		}
	}
}
