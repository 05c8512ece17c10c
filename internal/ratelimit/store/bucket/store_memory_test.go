package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	s.store = NewInMemoryBucketStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) fill(key string, n int) {
	for range n {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "test:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("request over limit denied", func() {
		s.fill("test:over", testLimit)
		result, err := s.store.Allow(s.ctx, "test:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Zero(result.Remaining)
	})

	s.Run("keys are independent", func() {
		s.fill("test:a", testLimit)
		result, err := s.store.Allow(s.ctx, "test:b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestWindowSlides() {
	s.fill("test:slide", testLimit/2)
	s.now = s.now.Add(30 * time.Second)
	s.fill("test:slide", testLimit/2)

	result, err := s.store.Allow(s.ctx, "test:slide", testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)

	// the first half leaves the window
	s.now = s.now.Add(31 * time.Second)
	result, err = s.store.Allow(s.ctx, "test:slide", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(testLimit/2-1, result.Remaining)
}

func (s *InMemoryBucketStoreSuite) TestIdleBucketsAreSwept() {
	for _, ip := range []string{"192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		s.fill("rl:ip:read:"+ip, 1)
	}
	s.Equal(3, s.store.Len())

	s.now = s.now.Add(30 * time.Second)
	s.fill("rl:ip:read:192.0.2.1", 1)
	s.Equal(3, s.store.Len(), "buckets inside the window are kept")

	s.now = s.now.Add(testWindow + DefaultSweepInterval)
	s.fill("rl:ip:read:192.0.2.9", 1)
	s.Equal(1, s.store.Len(), "only the fresh bucket remains")
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	s.fill("test:reset", testLimit)
	s.Require().NoError(s.store.Reset(s.ctx, "test:reset"))

	result, err := s.store.Allow(s.ctx, "test:reset", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestConcurrentAllowNeverExceedsLimit() {
	store := NewInMemoryBucketStore()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.Allow(s.ctx, "test:concurrent", testLimit, testWindow)
			s.NoError(err)
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
