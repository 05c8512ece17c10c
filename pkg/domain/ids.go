package domain

import (
	"github.com/google/uuid"

	dErrors "stacia/pkg/domain-errors"
)

// Typed identifiers keep session and analysis run IDs from being mixed up at
// compile time. All of them are non-nil UUIDs.
type (
	SessionID uuid.UUID
	RunID     uuid.UUID
)

// NewSessionID returns a fresh random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewRunID returns a fresh random analysis run ID.
func NewRunID() RunID { return RunID(uuid.New()) }

// ParseSessionID parses a session ID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseRunID parses an analysis run ID from external input.
func ParseRunID(s string) (RunID, error) {
	u, err := parseUUID(s, "run_id")
	return RunID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id RunID) String() string { return uuid.UUID(id).String() }
func (id RunID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RunID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RunID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
