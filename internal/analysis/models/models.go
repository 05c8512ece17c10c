package models

import (
	"time"

	id "stacia/pkg/domain"
)

// Status of a simulated analysis run. Transitions: idle → running → complete.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
)

// ProgressStep is the percentage added per tick.
const ProgressStep = 10

// MaxProgress is the completion threshold.
const MaxProgress = 100

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Finding is one personal-data field the simulated scan "detects".
type Finding struct {
	Type     string   `json:"type"`
	Field    string   `json:"field"`
	Location string   `json:"location"`
	Severity Severity `json:"severity"`
}

var fixedFindings = []Finding{
	{Type: "email", Field: "user_email", Location: "components/auth/LoginForm.tsx:45", Severity: SeverityHigh},
	{Type: "phone", Field: "phone_number", Location: "components/profile/UserProfile.tsx:23", Severity: SeverityHigh},
	{Type: "location", Field: "gps_coordinates", Location: "utils/location.js:12", Severity: SeverityMedium},
	{Type: "analytics", Field: "user_behavior", Location: "services/analytics.ts:8", Severity: SeverityMedium},
	{Type: "cookies", Field: "session_data", Location: "middleware/session.js:5", Severity: SeverityLow},
}

// FixedFindings returns a copy of the findings reported on completion.
func FixedFindings() []Finding {
	return append([]Finding(nil), fixedFindings...)
}

// State is the value advanced by the external clock.
type State struct {
	Status   Status    `json:"status"`
	Progress int       `json:"progress"`
	Findings []Finding `json:"findings"`
}

// Idle is the state before any run.
func Idle() State {
	return State{Status: StatusIdle, Findings: []Finding{}}
}

// Start resets to running at 0% with no findings, whatever the prior state.
func Start(State) State {
	return State{Status: StatusRunning, Findings: []Finding{}}
}

// Advance applies ticks steps of ProgressStep. Only running states move;
// reaching MaxProgress clamps, completes, and populates the findings.
func Advance(state State, ticks int) State {
	if state.Status != StatusRunning || ticks <= 0 {
		return state
	}
	next := state
	remaining := (MaxProgress - state.Progress + ProgressStep - 1) / ProgressStep
	if ticks >= remaining {
		next.Progress = MaxProgress
		next.Status = StatusComplete
		next.Findings = FixedFindings()
		return next
	}
	next.Progress = state.Progress + ticks*ProgressStep
	return next
}

// Run is one analysis as tracked by the service.
type Run struct {
	ID          id.RunID   `json:"id"`
	State       State      `json:"state"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	c := *r
	c.State.Findings = append([]Finding(nil), r.State.Findings...)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Tick advances the run by one step at now and reports whether it just completed.
func (r *Run) Tick(now time.Time) bool {
	before := r.State.Status
	r.State = Advance(r.State, 1)
	r.UpdatedAt = now
	if before != StatusComplete && r.State.Status == StatusComplete {
		r.CompletedAt = &now
		return true
	}
	return false
}
