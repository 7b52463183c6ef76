package models

import "time"

// SessionStatus represents the state of a time session.
type SessionStatus string

const (
	SessionStatusRunning  SessionStatus = "running"
	SessionStatusStopped  SessionStatus = "stopped"
	SessionStatusApproved SessionStatus = "approved"
	SessionStatusRejected SessionStatus = "rejected"
)

// Closed reports whether the status is a non-running one.
func (s SessionStatus) Closed() bool {
	return s == SessionStatusStopped || s == SessionStatusApproved || s == SessionStatusRejected
}

// SessionOrigin distinguishes sessions opened through the personal tracker
// from sessions opened by the legacy per-task switch. The two kinds live in
// separate mutual-exclusion domains: only tracker-origin sessions count
// against the one-running-session-per-owner rule.
type SessionOrigin string

const (
	OriginTracker SessionOrigin = "tracker"
	OriginLegacy  SessionOrigin = "legacy"
)

// TimeSession represents one contiguous interval of tracked work.
type TimeSession struct {
	ID              string
	OwnerID         string
	TaskID          string // optional
	ProjectID       string // optional, may coexist with TaskID
	Description     string
	Origin          SessionOrigin
	Status          SessionStatus
	StartTime       time.Time
	EndTime         *time.Time // nil while running
	DurationSeconds int64      // 0 while running, end-start in whole seconds once closed
	Billable        bool
	ClockSkewFlag   bool // set when a stop would have produced a negative duration
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Running reports whether the session is still open.
func (s *TimeSession) Running() bool {
	return s.Status == SessionStatusRunning
}
