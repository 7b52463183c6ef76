package store

import (
	"context"
	"time"

	"github.com/tkellner/timeclock/internal/models"
)

// SessionListFilter specifies filters for listing time sessions.
type SessionListFilter struct {
	OwnerID string
	TaskID  string
	Status  models.SessionStatus
	Limit   int
}

// AssignmentListFilter specifies filters for listing assignments.
type AssignmentListFilter struct {
	TaskID     string
	AssigneeID string
	Status     models.AcceptanceStatus
}

// Store defines the persistence interface for timeclock. The mutating
// session, switch, and assignment operations are each a single transaction:
// precondition failures are detected inside the transaction, roll it back,
// and surface as apperr typed errors.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]*models.Task, error)

	// Time sessions
	CreateSession(ctx context.Context, s *models.TimeSession) error
	GetSession(ctx context.Context, id string) (*models.TimeSession, error)
	GetRunningSession(ctx context.Context, ownerID string) (*models.TimeSession, error)
	ListSessions(ctx context.Context, filter SessionListFilter) ([]*models.TimeSession, error)
	CloseSession(ctx context.Context, ownerID, sessionID string, end time.Time) (*models.TimeSession, error)
	DeleteSession(ctx context.Context, ownerID, sessionID string) error

	// Legacy per-task switch
	SwitchOn(ctx context.Context, taskID, ownerID string, now time.Time) (*models.TimeSession, error)
	SwitchOff(ctx context.Context, taskID string, now time.Time) (int64, error)

	// Assignments
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, id string) (*models.Assignment, error)
	ListAssignments(ctx context.Context, filter AssignmentListFilter) ([]*models.Assignment, error)
	AcceptAssignment(ctx context.Context, id, actorID string, now time.Time) (*models.Assignment, error)
	RejectAssignment(ctx context.Context, id, actorID string, now time.Time) (*models.Assignment, *models.Task, error)

	// Notifications
	CreateNotification(ctx context.Context, n *models.NotificationEvent) error
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]*models.NotificationEvent, error)
	MarkNotificationRead(ctx context.Context, recipientID, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
