//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"stacia/internal/consent/models"
	"stacia/internal/consent/store"
	id "stacia/pkg/domain"
	"stacia/pkg/platform/sentinel"
	"stacia/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, store.WithTTL(time.Hour))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	session := models.NewSession(id.NewSessionID(), id.BusinessHealthcare, time.Now().UTC())
	_, err := session.ApplyToggle(id.CategoryProfiling, "User Profiling", time.Now().UTC())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, found.ID)
	s.Equal(id.BusinessHealthcare, found.Business)
	s.Equal(session.Ledger, found.Ledger)
	s.Require().Len(found.History, 2)
	s.Equal(models.StatusGranted, found.History[1].Status)

	ttl, err := s.redis.Client.TTL(ctx, "stacia:consent:session:"+session.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Minute)
}

func (s *RedisStoreSuite) TestCreateConflict() {
	ctx := context.Background()
	session := models.NewSession(id.NewSessionID(), "", time.Now())
	s.Require().NoError(s.store.Create(ctx, session))
	s.ErrorIs(s.store.Create(ctx, session), sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestMissingSession() {
	ctx := context.Background()
	_, err := s.store.FindByID(ctx, id.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Update(ctx, models.NewSession(id.NewSessionID(), "", time.Now())), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	session := models.NewSession(id.NewSessionID(), "", time.Now())
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.Delete(ctx, session.ID))
	s.ErrorIs(s.store.Delete(ctx, session.ID), sentinel.ErrNotFound)

	other := models.NewSession(id.NewSessionID(), "", time.Now())
	s.Require().NoError(s.store.Create(ctx, other))
	err := s.store.Watch(ctx, other.ID, func(tx *store.RedisTxStore) error {
		return tx.Delete(ctx, other.ID)
	})
	s.Require().NoError(err)
	_, err = s.store.FindByID(ctx, other.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestWatchDetectsConcurrentWrite() {
	ctx := context.Background()
	session := models.NewSession(id.NewSessionID(), id.BusinessBanking, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, session))

	err := s.store.Watch(ctx, session.ID, func(tx *store.RedisTxStore) error {
		loaded, err := tx.FindByID(ctx, session.ID)
		if err != nil {
			return err
		}
		// another writer lands between read and write
		other := loaded.Clone()
		other.SelectBusiness(id.BusinessHealthcare, time.Now().UTC())
		s.Require().NoError(s.store.Update(ctx, other))

		_, err = loaded.ApplyToggle(id.CategoryAnalytics, "Analytics", time.Now().UTC())
		s.Require().NoError(err)
		return tx.Update(ctx, loaded)
	})
	s.ErrorIs(err, redis.TxFailedErr)

	found, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(id.BusinessHealthcare, found.Business)
	s.False(found.Ledger[id.CategoryAnalytics])
}

func (s *RedisStoreSuite) TestWatchCommits() {
	ctx := context.Background()
	session := models.NewSession(id.NewSessionID(), "", time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, session))

	err := s.store.Watch(ctx, session.ID, func(tx *store.RedisTxStore) error {
		loaded, err := tx.FindByID(ctx, session.ID)
		if err != nil {
			return err
		}
		_, err = loaded.ApplyToggle(id.CategoryMarketing, "Marketing", time.Now().UTC())
		if err != nil {
			return err
		}
		return tx.Update(ctx, loaded)
	})
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.True(found.Ledger[id.CategoryMarketing])
	s.Len(found.History, 2)
}
