// Package publisher emits audit events with fail-closed persistence.
//
// Emit writes synchronously to the audit store and returns the store error
// to the caller. Persisted events are then offered to an optional outbox
// channel for fan-out to sinks; a full outbox drops the event from the
// fan-out only, never from the store.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	audit "stacia/pkg/platform/audit"
)

var errMissingAction = errors.New("audit event requires Action")

// Publisher persists audit events and forwards them to the outbox.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics

	mu      sync.RWMutex
	outbox  chan audit.Event
	closed  bool
	dropped atomic.Int64
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithAsyncBuffer enables the outbox with the given capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.outbox = make(chan audit.Event, size)
		}
	}
}

// NewPublisher creates a publisher backed by store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit persists the event. A returned error means the caller's operation
// must be treated as failed.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return errMissingAction
	}
	start := time.Now()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = start
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"session_id", event.SessionID,
				"error", err,
			)
		}
		return err
	}
	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}

	p.forward(ctx, event)
	return nil
}

func (p *Publisher) forward(ctx context.Context, event audit.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.outbox == nil || p.closed {
		return
	}
	select {
	case p.outbox <- event:
	default:
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.IncOutboxDropped()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit outbox full, event not forwarded",
				"action", event.Action,
				"event_id", event.ID,
			)
		}
	}
}

// ListRecent reads back from the underlying store.
func (p *Publisher) ListRecent(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, filter)
}

// Outbox returns the fan-out channel, or nil when no buffer is configured.
// The channel is closed by Close.
func (p *Publisher) Outbox() <-chan audit.Event {
	return p.outbox
}

// Dropped reports how many events were not forwarded because the outbox was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops forwarding and closes the outbox. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.outbox != nil {
		close(p.outbox)
	}
	return nil
}
