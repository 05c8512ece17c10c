package types

import "time"

// AuditEntry is the administrator's view of one audit event. Client IP and
// device stay in the store; the dashboard does not show them.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	Category  string
	Action    string
	SessionID string
	RunID     string
	Purpose   string
	Business  string
	Decision  string
	Reason    string
	RequestID string
}
