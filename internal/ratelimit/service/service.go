package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"stacia/internal/ratelimit/models"
)

// BucketStore counts requests per key over a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Service checks per-IP budgets for each endpoint class.
type Service struct {
	store  BucketStore
	limits map[models.EndpointClass]models.Limit
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New builds a Service. Every class used by callers needs a limit.
func New(store BucketStore, limits map[models.EndpointClass]models.Limit, opts ...Option) (*Service, error) {
	for class, l := range limits {
		if !class.IsValid() {
			return nil, fmt.Errorf("unknown endpoint class %q", class)
		}
		if l.Requests <= 0 || l.Window <= 0 {
			return nil, fmt.Errorf("limit for %s must be positive", class)
		}
	}
	s := &Service{store: store, limits: limits, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PerMinute is a convenience for building limits from config.
func PerMinute(read, write int) map[models.EndpointClass]models.Limit {
	return map[models.EndpointClass]models.Limit{
		models.ClassRead:  {Requests: read, Window: time.Minute},
		models.ClassWrite: {Requests: write, Window: time.Minute},
	}
}

// CheckIP consumes one request from the IP's budget for class. Classes
// without a configured limit are always allowed.
func (s *Service) CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error) {
	limit, ok := s.limits[class]
	if !ok {
		return &models.RateLimitResult{Allowed: true}, nil
	}
	result, err := s.store.Allow(ctx, models.IPKey(ip, class), limit.Requests, limit.Window)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		result.RetryAfter = retryAfterSeconds(result.ResetAt, s.now())
	}
	return result, nil
}

func retryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
