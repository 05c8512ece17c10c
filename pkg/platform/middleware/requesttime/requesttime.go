// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request use the same "now", so a toggle,
// its history entry and its audit event carry one timestamp.
package requesttime

import (
	"net/http"
	"time"

	"stacia/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
