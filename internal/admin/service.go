package admin

import (
	"context"
	"log/slog"

	"stacia/internal/admin/types"
	dErrors "stacia/pkg/domain-errors"
	audit "stacia/pkg/platform/audit"
	"stacia/pkg/requestcontext"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditReader lists recent audit entries in admin form.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int, actions []string) ([]*types.AuditEntry, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service backs the administrator dashboard.
type Service struct {
	reader         AuditReader
	auditPublisher AuditPublisher
	logger         *slog.Logger
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

func NewService(reader AuditReader, opts ...Option) *Service {
	s := &Service{reader: reader}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ListAudit returns the newest audit entries. The read itself is audited
// before anything is returned.
func (s *Service) ListAudit(ctx context.Context, limit int, actions []string) ([]*types.AuditEntry, error) {
	switch {
	case limit < 0:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "limit must not be negative")
	case limit == 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}

	if s.auditPublisher != nil {
		err := s.auditPublisher.Emit(ctx, audit.Event{
			Action:    string(audit.EventAdminAuditViewed),
			Timestamp: requestcontext.Now(ctx),
			RequestID: requestcontext.RequestID(ctx),
			ClientIP:  requestcontext.ClientIP(ctx),
			Device:    requestcontext.Device(ctx),
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit access")
		}
	}

	entries, err := s.reader.ListRecent(ctx, limit, actions)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	s.logger.InfoContext(ctx, string(audit.EventAdminAuditViewed),
		"event", string(audit.EventAdminAuditViewed),
		"log_type", "audit",
		"count", len(entries),
		"request_id", requestcontext.RequestID(ctx),
	)
	return entries, nil
}
