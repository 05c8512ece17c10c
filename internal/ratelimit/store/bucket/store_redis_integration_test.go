//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stacia/internal/ratelimit/store/bucket"
	"stacia/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		result, err := s.store.Allow(ctx, "rl:test", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-i, result.Remaining)
	}

	result, err := s.store.Allow(ctx, "rl:test", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.True(result.ResetAt.After(time.Now()))

	ttl, err := s.redis.Client.PTTL(ctx, "rl:test").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisBucketStoreSuite) TestShortWindowExpires() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "rl:short", 1, 200*time.Millisecond)
	s.Require().NoError(err)

	result, err := s.store.Allow(ctx, "rl:short", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	s.False(result.Allowed)

	time.Sleep(300 * time.Millisecond)
	result, err = s.store.Allow(ctx, "rl:short", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "rl:reset", 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "rl:reset"))

	result, err := s.store.Allow(ctx, "rl:reset", 1, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
