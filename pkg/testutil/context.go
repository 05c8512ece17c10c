package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stacia/pkg/requestcontext"
)

// WithURLParams attaches chi route parameters so a handler method can be
// called without mounting it on a router.
func WithURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClientIP stands in for the metadata middleware when only the
// address matters, e.g. for rate limiting.
func WithClientIP(req *http.Request, clientIP string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, "", ""))
}
