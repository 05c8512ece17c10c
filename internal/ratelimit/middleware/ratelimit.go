package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"stacia/internal/ratelimit/metrics"
	"stacia/internal/ratelimit/models"
	"stacia/pkg/platform/httputil"
	"stacia/pkg/requestcontext"
)

type RateLimiter interface {
	CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits each client IP per endpoint class, picking the class
// from the request method. Store failures let the request through.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		class := models.ClassForMethod(r.Method)

		result, err := m.limiter.CheckIP(ctx, ip, class)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check IP rate limit",
				"error", err,
				"class", string(class),
				"request_id", requestcontext.RequestID(ctx),
			)
			if m.metrics != nil {
				m.metrics.IncrementCheckFailures()
			}
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)

		if !result.Allowed {
			if m.metrics != nil {
				m.metrics.IncrementRejected(string(class))
			}
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"class", string(class),
				"request_id", requestcontext.RequestID(ctx),
			)
			writeRateLimitExceeded(w, result)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil || result.Limit == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests from this IP address. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
