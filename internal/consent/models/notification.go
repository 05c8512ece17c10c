package models

import (
	dErrors "stacia/pkg/domain-errors"
)

// Notification is the user-facing message emitted after a successful toggle.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ToggleNotification builds the message for a changed category. An empty
// title (no business selected) falls back to "Consent".
func ToggleNotification(title string, granted bool) Notification {
	if title == "" {
		title = "Consent"
	}
	verb := "withdrawn"
	if granted {
		verb = "granted"
	}
	return Notification{
		Title:       "Consent Updated",
		Description: title + " has been " + verb,
	}
}

// RequestKind enumerates data principal rights requests.
type RequestKind string

const (
	RequestExport   RequestKind = "export"
	RequestDeletion RequestKind = "deletion"
	RequestContact  RequestKind = "contact"
)

// ParseRequestKind validates a request kind from input.
func ParseRequestKind(s string) (RequestKind, error) {
	k := RequestKind(s)
	if _, ok := acknowledgments[k]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind must be one of export, deletion, contact")
	}
	return k, nil
}

// Acknowledgment is returned for a rights request. Nothing is transmitted.
type Acknowledgment struct {
	Kind        RequestKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

var acknowledgments = map[RequestKind]Acknowledgment{
	RequestExport: {
		Kind:        RequestExport,
		Title:       "Data Export Initiated",
		Description: "Your data export will be ready within 24 hours. We'll notify you via email.",
	},
	RequestDeletion: {
		Kind:        RequestDeletion,
		Title:       "Deletion Request Submitted",
		Description: "Your data deletion request is being processed. This may take up to 30 days.",
	},
	RequestContact: {
		Kind:        RequestContact,
		Title:       "Privacy Team Contacted",
		Description: "Your inquiry has been sent to our privacy team. Expect a response within 2 business days.",
	},
}

// AcknowledgmentFor returns the fixed acknowledgment for kind.
func AcknowledgmentFor(kind RequestKind) Acknowledgment {
	return acknowledgments[kind]
}
