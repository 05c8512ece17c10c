package memory

import (
	"context"
	"slices"
	"sync"

	audit "stacia/pkg/platform/audit"
)

// InMemoryStore keeps events in arrival order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns matching events newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, filter audit.Filter) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]audit.Event, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if len(filter.Actions) > 0 && !slices.Contains(filter.Actions, e.Action) {
			continue
		}
		result = append(result, e)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// ListBySession returns a session's events in arrival order.
func (s *InMemoryStore) ListBySession(_ context.Context, sessionID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []audit.Event
	for _, e := range s.events {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result, nil
}
