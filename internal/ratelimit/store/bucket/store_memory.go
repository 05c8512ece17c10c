package bucket

import (
	"context"
	"sync"
	"time"

	"stacia/internal/ratelimit/models"
)

// InMemoryBucketStore implements BucketStore using an in-memory sliding window.
// Not shared between instances; use RedisBucketStore for that.
type InMemoryBucketStore struct {
	mu            sync.Mutex
	buckets       map[string]*slidingWindow
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

// DefaultSweepInterval is how often idle buckets are dropped.
const DefaultSweepInterval = time.Minute

// slidingWindow tracks request timestamps for sliding window rate limiting.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

type MemoryOption func(*InMemoryBucketStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

// WithSweepInterval sets how often buckets with no live requests are removed.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *InMemoryBucketStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// NewInMemoryBucketStore creates a new in-memory bucket store.
func NewInMemoryBucketStore(opts ...MemoryOption) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets:       make(map[string]*slidingWindow),
		now:           time.Now,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow checks if a request is allowed and records it when it is.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	sw := s.getOrCreateBucket(key, window)
	sw.cleanup(now)

	if len(sw.timestamps) < limit {
		sw.timestamps = append(sw.timestamps, now)
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - len(sw.timestamps),
			ResetAt:   sw.timestamps[0].Add(window),
		}, nil
	}

	return &models.RateLimitResult{
		Allowed:   false,
		Limit:     limit,
		Remaining: 0,
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// cleanup removes expired timestamps from a sliding window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// sweep drops buckets whose requests have all left their window, so one
// bucket per client IP does not outlive the client. Must hold s.mu.
func (s *InMemoryBucketStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.sweepInterval {
		return
	}
	s.lastSweep = now
	for key, sw := range s.buckets {
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
		}
	}
}

// Len reports how many buckets are held.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// getOrCreateBucket must be called while holding s.mu.
func (s *InMemoryBucketStore) getOrCreateBucket(key string, window time.Duration) *slidingWindow {
	if sw := s.buckets[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{timestamps: []time.Time{}, window: window}
	s.buckets[key] = sw
	return sw
}
