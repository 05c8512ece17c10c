package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stacia/internal/consent/catalog"
	"stacia/internal/consent/metrics"
	"stacia/internal/consent/models"
	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
	audit "stacia/pkg/platform/audit"
	"stacia/pkg/platform/sentinel"
	"stacia/pkg/requestcontext"
)

const tracerName = "stacia/internal/consent/service"

type Store interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// Notifier delivers toggle notifications. Failures are logged, never surfaced.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates consent sessions: catalog resolution, ledger toggles,
// history and rights requests. Model functions stay pure; the service
// persists the values they return.
type Service struct {
	store          Store
	tx             SessionTx
	notifier       Notifier
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	strictKeys     bool
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

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithStrictKeys controls unknown-key toggles: strict returns CodeInvalidKey,
// lenient logs and leaves the session unchanged. Strict is the default.
func WithStrictKeys(strict bool) Option {
	return func(s *Service) {
		s.strictKeys = strict
	}
}

func WithTx(tx SessionTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		strictKeys: true,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newShardedSessionTx(store)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Businesses lists the business selector options.
func (s *Service) Businesses() []catalog.BusinessOption {
	return catalog.Businesses()
}

// Policies returns the ordered definitions for business.
func (s *Service) Policies(business id.BusinessCategory) []models.Definition {
	return catalog.ResolveOrdered(business)
}

// StartSession creates a session with the default ledger and its initial
// history entry.
func (s *Service) StartSession(ctx context.Context, business id.BusinessCategory) (*models.Session, error) {
	ctx, span := s.startSpan(ctx, "consent.StartSession", attribute.String("business", string(business)))
	defer span.End()

	if !business.IsValid() && business.IsSelected() {
		return nil, s.fail(span, dErrors.New(dErrors.CodeInvalidInput, "unknown business category"))
	}

	session := models.NewSession(id.NewSessionID(), business, requestcontext.Now(ctx))
	span.SetAttributes(attribute.String("session_id", session.ID.String()))

	if err := s.store.Create(ctx, session); err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create consent session"))
	}
	if err := s.emitCompliance(ctx, session, audit.EventSessionStarted, "", string(models.StatusInitial)); err != nil {
		if delErr := s.store.Delete(ctx, session.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove unaudited consent session",
				"session_id", session.ID.String(),
				"error", delErr,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, s.fail(span, err)
	}

	s.logAudit(ctx, string(audit.EventSessionStarted),
		"session_id", session.ID.String(),
		"business", string(business))
	if s.metrics != nil {
		s.metrics.IncrementSessionsStarted()
	}
	return session, nil
}

// GetSession loads a session.
func (s *Service) GetSession(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return session, nil
}

// SelectBusiness switches the session's business. The ledger and history
// are left as they are.
func (s *Service) SelectBusiness(ctx context.Context, sessionID id.SessionID, business id.BusinessCategory) (*models.Session, error) {
	ctx, span := s.startSpan(ctx, "consent.SelectBusiness",
		attribute.String("session_id", sessionID.String()),
		attribute.String("business", string(business)))
	defer span.End()

	if !business.IsValid() && business.IsSelected() {
		return nil, s.fail(span, dErrors.New(dErrors.CodeInvalidInput, "unknown business category"))
	}

	var updated *models.Session
	err := s.tx.RunInTx(ctx, sessionID, func(store Store) error {
		session, err := store.FindByID(ctx, sessionID)
		if err != nil {
			return translateStoreError(err)
		}
		session.SelectBusiness(business, requestcontext.Now(ctx))
		if err := store.Update(ctx, session); err != nil {
			return translateStoreError(err)
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.logAudit(ctx, string(audit.EventBusinessSelected),
		"session_id", sessionID.String(),
		"business", string(business))
	return updated, nil
}

// Toggle flips one consent category. Essential is never changed and
// produces no history entry and no notification. Unknown keys follow the
// strict-keys setting.
func (s *Service) Toggle(ctx context.Context, sessionID id.SessionID, rawKey string) (*models.ToggleResult, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "consent.Toggle",
		attribute.String("session_id", sessionID.String()),
		attribute.String("category", rawKey))
	defer span.End()

	key, err := id.ParseConsentCategoryKey(rawKey)
	if err != nil {
		return s.handleInvalidKey(ctx, span, sessionID, rawKey, err)
	}

	var (
		result  models.ToggleResult
		changed *models.HistoryEntry
		action  audit.AuditEvent
	)
	err = s.tx.RunInTx(ctx, sessionID, func(store Store) error {
		session, err := store.FindByID(ctx, sessionID)
		if err != nil {
			return translateStoreError(err)
		}
		before := session.Clone()
		entry, err := session.ApplyToggle(key, catalog.Title(key), requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		result.Session = session
		if entry == nil {
			return nil
		}
		action = audit.EventConsentWithdrawn
		if entry.Status == models.StatusGranted {
			action = audit.EventConsentGranted
		}
		if err := store.Update(ctx, session); err != nil {
			return translateStoreError(err)
		}
		if err := s.emitCompliance(ctx, session, action, string(key), string(entry.Status)); err != nil {
			s.revert(ctx, store, before)
			return err
		}
		changed = entry
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	if changed == nil {
		s.logAudit(ctx, string(audit.EventEssentialLocked),
			"session_id", sessionID.String(),
			"purpose", string(key))
		if s.metrics != nil {
			s.metrics.IncrementEssentialLocked()
		}
		return &result, nil
	}

	granted := changed.Status == models.StatusGranted
	notification := models.ToggleNotification(catalog.Resolve(result.Session.Business)[key].Title, granted)
	result.Notification = &notification
	s.notify(ctx, notification)

	s.logAudit(ctx, string(action),
		"session_id", sessionID.String(),
		"purpose", string(key),
		"business", string(result.Session.Business))
	if s.metrics != nil {
		s.metrics.IncrementToggle(string(key), string(changed.Status))
		s.metrics.ObserveToggle(start)
	}
	span.SetAttributes(attribute.String("status", string(changed.Status)))
	return &result, nil
}

// revert restores a session whose change could not be audited.
func (s *Service) revert(ctx context.Context, store Store, before *models.Session) {
	if err := store.Update(ctx, before); err != nil {
		s.logger.ErrorContext(ctx, "failed to revert unaudited consent change",
			"session_id", before.ID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) handleInvalidKey(ctx context.Context, span trace.Span, sessionID id.SessionID, rawKey string, keyErr error) (*models.ToggleResult, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if s.metrics != nil {
		s.metrics.IncrementInvalidKey()
	}
	s.logger.WarnContext(ctx, "toggle of unknown consent category",
		"session_id", sessionID.String(),
		"category", rawKey,
		"strict", s.strictKeys,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitBestEffort(ctx, audit.Event{
		SessionID: sessionID.String(),
		Action:    string(audit.EventInvalidKey),
		Purpose:   rawKey,
		Business:  string(session.Business),
		Reason:    keyErr.Error(),
	})
	if s.strictKeys {
		return nil, s.fail(span, keyErr)
	}
	return &models.ToggleResult{Session: session}, nil
}

// History returns the session's log newest first.
func (s *Service) History(ctx context.Context, sessionID id.SessionID) ([]models.HistoryEntry, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.History.Newest(), nil
}

// SubmitRequest records a rights request and returns its acknowledgment.
// Nothing leaves the system; the audit trail is the record.
func (s *Service) SubmitRequest(ctx context.Context, sessionID id.SessionID, kind models.RequestKind) (models.Acknowledgment, error) {
	ctx, span := s.startSpan(ctx, "consent.SubmitRequest",
		attribute.String("session_id", sessionID.String()),
		attribute.String("kind", string(kind)))
	defer span.End()

	action, ok := requestEvents[kind]
	if !ok {
		return models.Acknowledgment{}, s.fail(span, dErrors.New(dErrors.CodeInvalidInput, "unknown request kind"))
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return models.Acknowledgment{}, s.fail(span, err)
	}
	if err := s.emitCompliance(ctx, session, action, "", "submitted"); err != nil {
		return models.Acknowledgment{}, s.fail(span, err)
	}

	s.logAudit(ctx, string(action), "session_id", sessionID.String())
	if s.metrics != nil {
		s.metrics.IncrementDataRequest(string(kind))
	}
	return models.AcknowledgmentFor(kind), nil
}

var requestEvents = map[models.RequestKind]audit.AuditEvent{
	models.RequestExport:   audit.EventDataExportRequested,
	models.RequestDeletion: audit.EventDataDeletionRequested,
	models.RequestContact:  audit.EventPrivacyContacted,
}

func translateStoreError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "consent session not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "consent store failure")
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) notify(ctx context.Context, notification models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.WarnContext(ctx, "consent notification failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// emitCompliance is fail-closed: the caller must abort when it errors.
func (s *Service) emitCompliance(ctx context.Context, session *models.Session, action audit.AuditEvent, purpose, decision string) error {
	if s.auditPublisher == nil {
		return nil
	}
	err := s.auditPublisher.Emit(ctx, s.event(ctx, audit.Event{
		SessionID: session.ID.String(),
		Action:    string(action),
		Purpose:   purpose,
		Business:  string(session.Business),
		Decision:  decision,
	}))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record consent audit")
	}
	return nil
}

func (s *Service) emitBestEffort(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, s.event(ctx, event)); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func (s *Service) event(ctx context.Context, event audit.Event) audit.Event {
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.Device = requestcontext.Device(ctx)
	return event
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
