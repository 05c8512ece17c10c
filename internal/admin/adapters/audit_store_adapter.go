package adapters

import (
	"context"

	"stacia/internal/admin/types"
	audit "stacia/pkg/platform/audit"
)

// AuditLister is implemented by the audit publisher and the audit stores.
type AuditLister interface {
	ListRecent(ctx context.Context, filter audit.Filter) ([]audit.Event, error)
}

// AuditStoreAdapter adapts an audit store to admin's AuditReader interface.
type AuditStoreAdapter struct {
	store AuditLister
}

// NewAuditStoreAdapter creates a new adapter wrapping an audit lister.
func NewAuditStoreAdapter(store AuditLister) *AuditStoreAdapter {
	return &AuditStoreAdapter{store: store}
}

// ListRecent returns the newest events mapped to admin types.
func (a *AuditStoreAdapter) ListRecent(ctx context.Context, limit int, actions []string) ([]*types.AuditEntry, error) {
	events, err := a.store.ListRecent(ctx, audit.Filter{Limit: limit, Actions: actions})
	if err != nil {
		return nil, err
	}
	result := make([]*types.AuditEntry, 0, len(events))
	for _, e := range events {
		result = append(result, mapEvent(e))
	}
	return result, nil
}

func mapEvent(e audit.Event) *types.AuditEntry {
	return &types.AuditEntry{
		ID:        e.ID.String(),
		Timestamp: e.Timestamp,
		Category:  string(e.Category),
		Action:    e.Action,
		SessionID: e.SessionID,
		RunID:     e.RunID,
		Purpose:   e.Purpose,
		Business:  e.Business,
		Decision:  e.Decision,
		Reason:    e.Reason,
		RequestID: e.RequestID,
	}
}
