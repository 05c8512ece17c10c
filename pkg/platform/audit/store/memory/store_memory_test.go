package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	audit "stacia/pkg/platform/audit"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) append(sessionID, action string) {
	s.Require().NoError(s.store.Append(s.ctx, audit.Event{SessionID: sessionID, Action: action}))
}

func (s *InMemoryStoreSuite) TestListRecent() {
	s.append("a", string(audit.EventSessionStarted))
	s.append("a", string(audit.EventConsentGranted))
	s.append("b", string(audit.EventConsentWithdrawn))

	s.Run("newest first", func() {
		events, err := s.store.ListRecent(s.ctx, audit.Filter{})
		s.Require().NoError(err)
		s.Require().Len(events, 3)
		s.Equal(string(audit.EventConsentWithdrawn), events[0].Action)
		s.Equal(string(audit.EventSessionStarted), events[2].Action)
	})

	s.Run("limit applies after filtering", func() {
		events, err := s.store.ListRecent(s.ctx, audit.Filter{
			Limit:   1,
			Actions: []string{string(audit.EventConsentGranted), string(audit.EventSessionStarted)},
		})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventConsentGranted), events[0].Action)
	})
}

func (s *InMemoryStoreSuite) TestListBySession() {
	s.append("a", string(audit.EventSessionStarted))
	s.append("b", string(audit.EventSessionStarted))
	s.append("a", string(audit.EventConsentGranted))

	events, err := s.store.ListBySession(s.ctx, "a")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventConsentGranted), events[1].Action)
}
