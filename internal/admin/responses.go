package admin

import (
	"time"

	"stacia/internal/admin/types"
)

// AuditEventResponse is the HTTP response DTO for one audit event.
type AuditEventResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	SessionID string    `json:"session_id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Purpose   string    `json:"purpose,omitempty"`
	Business  string    `json:"business,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// AuditListResponse wraps the list of audit events for HTTP response.
type AuditListResponse struct {
	Events []*AuditEventResponse `json:"events"`
	Total  int                   `json:"total"`
}

func toAuditListResponse(entries []*types.AuditEntry) *AuditListResponse {
	events := make([]*AuditEventResponse, 0, len(entries))
	for _, e := range entries {
		events = append(events, &AuditEventResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Category:  e.Category,
			Action:    e.Action,
			SessionID: e.SessionID,
			RunID:     e.RunID,
			Purpose:   e.Purpose,
			Business:  e.Business,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		})
	}
	return &AuditListResponse{Events: events, Total: len(events)}
}
