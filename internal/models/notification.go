package models

import "time"

// NotificationType identifies the lifecycle event a notification describes.
type NotificationType string

const (
	NotificationTaskRejected  NotificationType = "task_rejected"
	NotificationIssueReported NotificationType = "issue_reported"
)

// NotificationEvent is a write-once message delivered to a single recipient.
// A lifecycle event addressed to several recipients is stored as one row per
// recipient so each can mark it read independently.
type NotificationEvent struct {
	ID          string
	RecipientID string
	Type        NotificationType
	TaskID      string // optional
	ActorID     string // who triggered the event
	Message     string
	Read        bool
	CreatedAt   time.Time
}
