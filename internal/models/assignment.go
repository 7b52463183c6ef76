package models

import "time"

// AcceptanceStatus is the lifecycle state of an assignment.
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "pending"
	AcceptanceAccepted AcceptanceStatus = "accepted"
	AcceptanceRejected AcceptanceStatus = "rejected"
)

// Resolved reports whether the assignment has left the pending state.
// Accepted and rejected are terminal; there is no re-offering.
func (s AcceptanceStatus) Resolved() bool {
	return s == AcceptanceAccepted || s == AcceptanceRejected
}

// Assignment represents an offer of a task to a specific actor.
type Assignment struct {
	ID               string
	TaskID           string
	AssigneeID       string
	AcceptanceStatus AcceptanceStatus
	AcceptedBy       string
	AcceptedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
