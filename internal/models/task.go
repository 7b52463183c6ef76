package models

import "time"

// Task is the aggregate view the tracking engine cares about. Full task
// management (modules, departments, roles) lives in the surrounding CRUD
// layer; only the fields the timer and assignment paths mutate are here.
type Task struct {
	ID        string
	ProjectID string
	Title     string
	CreatorID string

	// Legacy per-task tracking flag. Independent of personal sessions:
	// a task being switched on does not block anyone's own timer.
	TimeTrackingActive bool
	LastSwitchOn       *time.Time // start of the current legacy interval when active

	// Running total of all closed session durations attributed to this task.
	TotalTimeSeconds int64

	// Set by the assignment state machine on acceptance.
	Accepted   bool
	AcceptedBy string
	AcceptedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
