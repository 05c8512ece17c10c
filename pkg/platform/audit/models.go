package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// consent changes and data principal rights requests.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity; can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// SessionID identifies the data principal's consent session.
	SessionID string
	// RunID identifies the analysis run for analysis events.
	RunID  string
	Action string
	// Purpose is the consent category key for consent events.
	Purpose  string
	Business string
	// Decision is the resulting status (granted, withdrawn, initial, submitted).
	Decision  string
	Reason    string
	RequestID string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	// Consent session events
	EventSessionStarted   AuditEvent = "consent_session_started"
	EventBusinessSelected AuditEvent = "business_selected"
	EventConsentGranted   AuditEvent = "consent_granted"
	EventConsentWithdrawn AuditEvent = "consent_withdrawn"
	EventEssentialLocked  AuditEvent = "essential_toggle_ignored"
	EventInvalidKey       AuditEvent = "invalid_consent_key"

	// Data principal rights requests
	EventDataExportRequested   AuditEvent = "data_export_requested"
	EventDataDeletionRequested AuditEvent = "data_deletion_requested"
	EventPrivacyContacted      AuditEvent = "privacy_team_contacted"

	// Admin access
	EventAdminAuditViewed AuditEvent = "admin_audit_viewed"

	// Business analysis
	EventAnalysisStarted   AuditEvent = "analysis_started"
	EventAnalysisCompleted AuditEvent = "analysis_completed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventConsentGranted:        CategoryCompliance,
	EventConsentWithdrawn:      CategoryCompliance,
	EventSessionStarted:        CategoryCompliance,
	EventDataExportRequested:   CategoryCompliance,
	EventDataDeletionRequested: CategoryCompliance,
	EventPrivacyContacted:      CategoryCompliance,

	EventInvalidKey:       CategorySecurity,
	EventAdminAuditViewed: CategorySecurity,

	EventBusinessSelected:  CategoryOperations,
	EventEssentialLocked:   CategoryOperations,
	EventAnalysisStarted:   CategoryOperations,
	EventAnalysisCompleted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Filter narrows ListRecent. Zero values mean "no filter".
type Filter struct {
	Limit   int
	Actions []string
}

// Store persists audit events. Implementations are append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, filter Filter) ([]Event, error)
}

// Sink receives events after they are persisted (e.g. a message broker).
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}
