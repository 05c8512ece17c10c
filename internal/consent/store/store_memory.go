package store

import (
	"context"
	"sync"

	"stacia/internal/consent/models"
	id "stacia/pkg/domain"
	"stacia/pkg/platform/sentinel"
)

// InMemory keeps sessions in a map. Values are cloned on the way in and
// out so callers never share ledgers or history with the store.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemory) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return session.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}
