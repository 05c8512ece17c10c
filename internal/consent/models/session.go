package models

import (
	"time"

	id "stacia/pkg/domain"
)

// Session is the aggregate for one data principal's consent state.
//
// Invariants:
//   - Ledger holds all eight categories and essential is granted
//   - History only grows; entries are never edited or removed
//   - Business changes never touch the ledger or history
type Session struct {
	ID        id.SessionID        `json:"id"`
	Business  id.BusinessCategory `json:"business"`
	Ledger    Ledger              `json:"ledger"`
	History   History             `json:"history"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewSession starts a session with the default ledger and the initial entry.
func NewSession(sessionID id.SessionID, business id.BusinessCategory, now time.Time) *Session {
	return &Session{
		ID:        sessionID,
		Business:  business,
		Ledger:    DefaultLedger(),
		History:   History{InitialEntry(now, business)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so stores never share maps or slices with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Ledger = s.Ledger.Clone()
	c.History = append(History(nil), s.History...)
	return &c
}

// SelectBusiness switches the business context.
func (s *Session) SelectBusiness(business id.BusinessCategory, now time.Time) {
	s.Business = business
	s.UpdatedAt = now
}

// ApplyToggle flips key and appends the history entry. title names the
// category in the entry's action text. The returned entry is nil when
// nothing changed.
func (s *Session) ApplyToggle(key id.ConsentCategoryKey, title string, now time.Time) (*HistoryEntry, error) {
	next, changed, err := Toggle(s.Ledger, key)
	if err != nil || !changed {
		return nil, err
	}
	entry := ChangeEntry(now, title, next.Granted(key), s.Business)
	s.Ledger = next
	s.History = Append(s.History, entry)
	s.UpdatedAt = now
	return &entry, nil
}
