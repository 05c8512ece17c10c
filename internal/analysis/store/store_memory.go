package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"stacia/internal/analysis/models"
	id "stacia/pkg/domain"
	"stacia/pkg/platform/sentinel"
)

// InMemory keeps analysis runs in a map. Runs are cloned in and out.
type InMemory struct {
	mu   sync.RWMutex
	runs map[id.RunID]*models.Run
}

func NewInMemory() *InMemory {
	return &InMemory{runs: make(map[id.RunID]*models.Run)}
}

func (s *InMemory) Create(_ context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return sentinel.ErrConflict
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, runID id.RunID) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return run.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

// ListRunning returns runs still in progress, oldest first.
func (s *InMemory) ListRunning(_ context.Context) ([]*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	running := make([]*models.Run, 0)
	for _, run := range s.runs {
		if run.State.Status == models.StatusRunning {
			running = append(running, run.Clone())
		}
	}
	sort.Slice(running, func(i, j int) bool {
		return running[i].StartedAt.Before(running[j].StartedAt)
	})
	return running, nil
}

// DeleteCompletedBefore drops runs that completed before cutoff and
// returns how many were removed.
func (s *InMemory) DeleteCompletedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for runID, run := range s.runs {
		if run.CompletedAt != nil && run.CompletedAt.Before(cutoff) {
			delete(s.runs, runID)
			removed++
		}
	}
	return removed, nil
}
