package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"stacia/internal/analysis/metrics"
	"stacia/internal/analysis/models"
	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
	audit "stacia/pkg/platform/audit"
	"stacia/pkg/platform/sentinel"
	"stacia/pkg/requestcontext"
)

// DefaultRetention is how long completed runs stay readable.
const DefaultRetention = time.Hour

type Store interface {
	Create(ctx context.Context, run *models.Run) error
	FindByID(ctx context.Context, runID id.RunID) (*models.Run, error)
	Update(ctx context.Context, run *models.Run) error
	ListRunning(ctx context.Context) ([]*models.Run, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service starts simulated analysis runs and advances them on each tick.
// It never owns a timer; the worker calls Tick.
type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	retention      time.Duration

	// tickMu serialises Tick so concurrent callers cannot double-advance a run.
	tickMu sync.Mutex
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRetention sets how long completed runs are kept. Zero keeps them forever.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		s.retention = d
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start creates a new run at 0%.
func (s *Service) Start(ctx context.Context) (*models.Run, error) {
	now := requestcontext.Now(ctx)
	run := &models.Run{
		ID:        id.NewRunID(),
		State:     models.Start(models.Idle()),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, run); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start analysis")
	}

	s.emit(ctx, run, audit.EventAnalysisStarted)
	s.logAudit(ctx, string(audit.EventAnalysisStarted), "run_id", run.ID.String())
	if s.metrics != nil {
		s.metrics.IncrementRunsStarted()
	}
	return run, nil
}

// Get returns a run by ID.
func (s *Service) Get(ctx context.Context, runID id.RunID) (*models.Run, error) {
	run, err := s.store.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "analysis run not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load analysis run")
	}
	return run, nil
}

// Tick advances every running run by one step and returns how many completed.
func (s *Service) Tick(ctx context.Context, now time.Time) (int, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	running, err := s.store.ListRunning(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list running analyses")
	}

	completed := 0
	for _, run := range running {
		done := run.Tick(now)
		if err := s.store.Update(ctx, run); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return completed, dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance analysis")
		}
		if done {
			completed++
			s.emit(ctx, run, audit.EventAnalysisCompleted)
			s.logAudit(ctx, string(audit.EventAnalysisCompleted),
				"run_id", run.ID.String(),
				"findings", len(run.State.Findings))
			if s.metrics != nil {
				s.metrics.IncrementRunsCompleted()
			}
		}
	}

	if s.metrics != nil {
		s.metrics.SetRunsActive(len(running) - completed)
	}
	if s.retention > 0 {
		if removed, err := s.store.DeleteCompletedBefore(ctx, now.Add(-s.retention)); err != nil {
			s.logger.WarnContext(ctx, "failed to prune analysis runs", "error", err)
		} else if removed > 0 {
			s.logger.DebugContext(ctx, "pruned analysis runs", "removed", removed)
		}
	}
	return completed, nil
}

// emit is best-effort: analysis events are operational, not compliance records.
func (s *Service) emit(ctx context.Context, run *models.Run, action audit.AuditEvent) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Action:    string(action),
		Decision:  string(run.State.Status),
		RunID:     run.ID.String(),
		Timestamp: run.UpdatedAt,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
