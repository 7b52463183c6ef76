// Package assignment implements the task assignment state machine:
// pending → accepted | rejected, with no transitions out of the terminal
// states. Rejection notifies the task's creator through the Notifier.
package assignment

import (
	"context"
	"fmt"

	"github.com/tkellner/timeclock/internal/apperr"
	"github.com/tkellner/timeclock/internal/clock"
	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/notify"
	"github.com/tkellner/timeclock/internal/store"
)

// Service drives the assignment lifecycle.
type Service struct {
	store    store.Store
	clock    clock.Clock
	notifier *notify.Notifier
	bus      *notify.Bus
}

// NewService creates an assignment service. bus may be nil.
func NewService(s store.Store, c clock.Clock, n *notify.Notifier, bus *notify.Bus) *Service {
	return &Service{store: s, clock: c, notifier: n, bus: bus}
}

// Assign offers a task to an actor. The assignment starts pending.
func (s *Service) Assign(ctx context.Context, taskID, assigneeID string) (*models.Assignment, error) {
	if taskID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "task id is required", nil)
	}
	if assigneeID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "assignee is required", nil)
	}

	// The task must exist; an assignment referencing nothing is useless.
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	a := &models.Assignment{
		TaskID:           taskID,
		AssigneeID:       assigneeID,
		AcceptanceStatus: models.AcceptancePending,
	}
	if err := s.store.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Accept resolves a pending assignment in the assignee's favor and mirrors
// the acceptance onto the task. Only the assignee may accept; a resolved
// assignment yields AlreadyResolved.
func (s *Service) Accept(ctx context.Context, assignmentID, actorID string) (*models.Assignment, error) {
	if actorID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "actor is required", nil)
	}

	a, err := s.store.AcceptAssignment(ctx, assignmentID, actorID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(notify.EventTaskAccepted, a.TaskID, actorID)
	}
	return a, nil
}

// Reject resolves a pending assignment against the task and notifies the
// task's creator. Notification is best effort: its failure never undoes the
// committed rejection.
func (s *Service) Reject(ctx context.Context, assignmentID, actorID string) (*models.Assignment, error) {
	if actorID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "actor is required", nil)
	}

	a, task, err := s.store.RejectAssignment(ctx, assignmentID, actorID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, []string{task.CreatorID}, &models.NotificationEvent{
		Type:    models.NotificationTaskRejected,
		TaskID:  task.ID,
		ActorID: actorID,
		Message: fmt.Sprintf("task %q was rejected by its assignee", task.Title),
	})
	return a, nil
}

// Get returns a single assignment.
func (s *Service) Get(ctx context.Context, id string) (*models.Assignment, error) {
	return s.store.GetAssignment(ctx, id)
}

// List returns assignments matching the filter.
func (s *Service) List(ctx context.Context, filter store.AssignmentListFilter) ([]*models.Assignment, error) {
	return s.store.ListAssignments(ctx, filter)
}
