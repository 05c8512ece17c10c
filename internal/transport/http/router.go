// Package httptransport assembles the public HTTP surface: the shared
// middleware chain, platform endpoints and every module's routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stacia/internal/platform/metrics"
	"stacia/pkg/platform/httputil"
	"stacia/pkg/platform/middleware/metadata"
	"stacia/pkg/platform/middleware/request"
	"stacia/pkg/platform/middleware/requesttime"
)

// Module is implemented by every handler that mounts routes.
type Module interface {
	Register(r chi.Router)
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	// Metrics enables per-route latency metrics. Nil disables them.
	Metrics *metrics.Metrics
	// RateLimit runs after client metadata is resolved. Nil disables it.
	RateLimit func(http.Handler) http.Handler
	// HealthChecks are run by /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

type HealthCheck func(ctx context.Context) error

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter wires the middleware chain, /health, /metrics and the modules.
func NewRouter(cfg RouterConfig, modules ...Module) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Recovery(cfg.Logger))
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	r.Use(request.ContentTypeJSON)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.LatencyMiddleware)
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	for _, m := range modules {
		m.Register(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "route not found",
		})
	})
	return r
}

// healthHandler reports 503 when any dependency check fails.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
