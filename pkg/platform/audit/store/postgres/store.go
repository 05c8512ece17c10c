package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "stacia/pkg/platform/audit"
)

// Schema creates the audit_events table. Applied by EnsureSchema at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	session_id  TEXT NOT NULL DEFAULT '',
	run_id      TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	purpose     TEXT NOT NULL DEFAULT '',
	business    TEXT NOT NULL DEFAULT '',
	decision    TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT '',
	device      TEXT NOT NULL DEFAULT ''
);
ALTER TABLE audit_events ADD COLUMN IF NOT EXISTS run_id TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx ON audit_events (timestamp DESC);
CREATE INDEX IF NOT EXISTS audit_events_session_idx ON audit_events (session_id);
`

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the table and indexes if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append inserts an event. Idempotent on event ID.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, session_id, run_id, action,
			purpose, business, decision, reason,
			request_id, client_ip, device
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.SessionID,
		event.RunID,
		event.Action,
		event.Purpose,
		event.Business,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns events newest first, optionally filtered by action.
func (s *Store) ListRecent(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, session_id, run_id, action,
			   purpose, business, decision, reason,
			   request_id, client_ip, device
		FROM audit_events
		WHERE cardinality($1::text[]) = 0 OR action = ANY($1::text[])
		ORDER BY timestamp DESC
	`
	args := []any{pq.Array(filter.Actions)}
	if filter.Limit > 0 {
		query += " LIMIT $2"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&event.SessionID,
			&event.RunID,
			&event.Action,
			&event.Purpose,
			&event.Business,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ClientIP,
			&event.Device,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
