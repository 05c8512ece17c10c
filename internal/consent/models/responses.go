package models

import (
	"time"

	id "stacia/pkg/domain"
)

// LedgerRow is one category as rendered for the data principal.
type LedgerRow struct {
	Key         id.ConsentCategoryKey `json:"key"`
	Granted     bool                  `json:"granted"`
	Required    bool                  `json:"required"`
	Title       string                `json:"title,omitempty"`
	Description string                `json:"description,omitempty"`
	Detail      string                `json:"detail,omitempty"`
}

// SessionView is the HTTP response for a session.
type SessionView struct {
	ID            id.SessionID        `json:"id"`
	Business      id.BusinessCategory `json:"business"`
	BusinessLabel string              `json:"business_label,omitempty"`
	Rows          []LedgerRow         `json:"rows"`
	ActiveCount   int                 `json:"active_count"`
	Total         int                 `json:"total"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewSessionView renders rows in canonical key order. defs is the resolved
// catalog for the session's business; rows carry no text when it is empty.
func NewSessionView(s *Session, label string, defs map[id.ConsentCategoryKey]Definition) SessionView {
	keys := id.ConsentCategoryKeys()
	rows := make([]LedgerRow, 0, len(keys))
	for _, key := range keys {
		row := LedgerRow{
			Key:      key,
			Granted:  s.Ledger.Granted(key),
			Required: key.IsEssential(),
		}
		if def, ok := defs[key]; ok {
			row.Title = def.Title
			row.Description = def.Description
			row.Detail = def.Detail
			row.Required = def.Required
		}
		rows = append(rows, row)
	}
	return SessionView{
		ID:            s.ID,
		Business:      s.Business,
		BusinessLabel: label,
		Rows:          rows,
		ActiveCount:   ActiveCount(s.Ledger),
		Total:         len(keys),
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToggleResponse carries the updated view and the notification, if any.
type ToggleResponse struct {
	Session      SessionView   `json:"session"`
	Notification *Notification `json:"notification"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}

type PoliciesResponse struct {
	Business    id.BusinessCategory `json:"business"`
	Definitions []Definition        `json:"definitions"`
}

// ToggleResult is the service outcome of a toggle. Notification is nil
// when the ledger did not change.
type ToggleResult struct {
	Session      *Session
	Notification *Notification
}
