package models

import (
	"time"

	id "stacia/pkg/domain"
)

// HistoryStatus is the resulting state recorded by a history entry.
type HistoryStatus string

const (
	StatusGranted   HistoryStatus = "granted"
	StatusWithdrawn HistoryStatus = "withdrawn"
	// StatusInitial is reserved for the first entry written when a session starts.
	StatusInitial HistoryStatus = "initial"
)

// StatusFor derives the status from the new ledger value.
func StatusFor(granted bool) HistoryStatus {
	if granted {
		return StatusGranted
	}
	return StatusWithdrawn
}

// HistoryEntry is one consent-change event.
type HistoryEntry struct {
	Timestamp time.Time           `json:"timestamp"`
	Action    string              `json:"action"`
	Status    HistoryStatus       `json:"status"`
	Business  id.BusinessCategory `json:"business"`
}

// History is the append-only log of a session, oldest first.
type History []HistoryEntry

// Append returns a new log with entry at the end. The input is not modified.
func Append(log History, entry HistoryEntry) History {
	out := make(History, len(log), len(log)+1)
	copy(out, log)
	return append(out, entry)
}

// Newest returns a newest-first copy for display.
func (h History) Newest() []HistoryEntry {
	out := make([]HistoryEntry, len(h))
	for i, e := range h {
		out[len(h)-1-i] = e
	}
	return out
}

// InitialEntry is the synthetic entry recorded at session start.
func InitialEntry(now time.Time, business id.BusinessCategory) HistoryEntry {
	return HistoryEntry{
		Timestamp: now,
		Action:    "Initial consent provided",
		Status:    StatusInitial,
		Business:  business,
	}
}

// ChangeEntry records a toggle of the category titled title.
func ChangeEntry(now time.Time, title string, granted bool, business id.BusinessCategory) HistoryEntry {
	status := StatusFor(granted)
	return HistoryEntry{
		Timestamp: now,
		Action:    title + " consent " + string(status),
		Status:    status,
		Business:  business,
	}
}
