package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminpkg "stacia/internal/admin"
	adminadapters "stacia/internal/admin/adapters"
	analysishandler "stacia/internal/analysis/handler"
	analysisservice "stacia/internal/analysis/service"
	analysisstore "stacia/internal/analysis/store"
	consenthandler "stacia/internal/consent/handler"
	consentservice "stacia/internal/consent/service"
	consentstore "stacia/internal/consent/store"
	"stacia/pkg/platform/audit/publisher"
	auditmemory "stacia/pkg/platform/audit/store/memory"
	adminmw "stacia/pkg/platform/middleware/admin"
	"stacia/pkg/platform/middleware/request"
	"stacia/pkg/requestcontext"
	"stacia/pkg/testutil"
)

const adminToken = "router-test-token"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithLogger(logger))

	consent := consentservice.New(consentstore.NewInMemory(),
		consentservice.WithLogger(logger),
		consentservice.WithAuditPublisher(pub))
	analysis := analysisservice.New(analysisstore.NewInMemory(),
		analysisservice.WithLogger(logger),
		analysisservice.WithAuditPublisher(pub))
	admin := adminpkg.NewService(adminadapters.NewAuditStoreAdapter(pub),
		adminpkg.WithAuditPublisher(pub),
		adminpkg.WithLogger(logger))

	return NewRouter(RouterConfig{Logger: logger},
		consenthandler.New(consent, logger),
		analysishandler.New(analysis, logger),
		adminpkg.NewHandler(admin, adminToken, logger),
	)
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "the assembled router", func(t *testing.T) {
		router := newTestRouter(t)

		testutil.When(t, "calling GET /health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

			testutil.Then(t, "it reports ok with a request id", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "status", "ok")
				assert.NotEmpty(t, rr.Header().Get(request.RequestIDHeader))
			})
		})

		testutil.When(t, "calling GET /metrics", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "prometheus output is served", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.Contains(t, rr.Body.String(), "go_goroutines")
			})
		})

		testutil.When(t, "starting a consent session", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/consent/sessions", map[string]string{"business": "banking"})
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the session starts with three active categories", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertJSONContains(t, rr, "active_count", float64(3))
			})
		})

		testutil.When(t, "starting an analysis", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/business/analysis"))

			testutil.Then(t, "the run is accepted", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusAccepted)
			})
		})

		testutil.When(t, "reading the audit log with the admin token", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/admin/audit")
			req.Header.Set(adminmw.AdminTokenHeader, adminToken)
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "earlier requests are listed", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				body := rr.Body.String()
				assert.Contains(t, body, "consent_session_started")
				assert.Contains(t, body, "analysis_started")
			})
		})

		testutil.When(t, "calling an unknown route", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))

			testutil.Then(t, "a JSON not found is returned", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
			})
		})

		testutil.When(t, "posting a non JSON body", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/consent/sessions", strings.NewReader("business=banking"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it is rejected as unsupported", func(t *testing.T) {
				require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
			})
		})
	})
}

func TestRouterHealthChecks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(RouterConfig{
		Logger: logger,
		HealthChecks: map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		},
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	resp := testutil.UnmarshalResponse[healthResponse](t, rr)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.Equal(t, "connection refused", resp.Checks["redis"])
}

func TestRouterRateLimitHook(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seenIP string
	router := NewRouter(RouterConfig{
		Logger: logger,
		RateLimit: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenIP = requestcontext.ClientIP(r.Context())
				w.WriteHeader(http.StatusTooManyRequests)
			})
		},
	})

	req := testutil.NewRequest(t, http.MethodGet, "/health")
	req.RemoteAddr = "203.0.113.9:41000"
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusTooManyRequests)
	assert.Equal(t, "203.0.113.9", seenIP)
}
