// Package sentinel holds the store-level errors shared by the session and
// analysis stores. Services translate them into domain errors.
package sentinel

import "errors"

var (
	// ErrNotFound: no record under the requested ID (or its TTL lapsed).
	ErrNotFound = errors.New("not found")
	// ErrConflict: a record with the same ID already exists.
	ErrConflict = errors.New("conflict")
)
