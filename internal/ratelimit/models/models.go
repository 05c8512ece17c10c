package models

import (
	"net/http"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassRead: GET and HEAD, e.g. session views, history, policies.
	ClassRead EndpointClass = "read"
	// ClassWrite: everything that changes state, e.g. toggles, rights requests.
	ClassWrite EndpointClass = "write"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	return c == ClassRead || c == ClassWrite
}

// ClassForMethod maps an HTTP method to its class.
func ClassForMethod(method string) EndpointClass {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

// Limit is a request budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// IPKey builds the bucket key for a client IP and class.
func IPKey(ip string, class EndpointClass) string {
	return "rl:ip:" + string(class) + ":" + ip
}
