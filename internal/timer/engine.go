// Package timer implements the time-tracking engine: per-owner start/stop
// sessions and the legacy per-task switch. The store provides the atomic
// check-then-write primitives; the engine supplies validation, the clock,
// and event publication.
package timer

import (
	"context"

	"github.com/tkellner/timeclock/internal/apperr"
	"github.com/tkellner/timeclock/internal/clock"
	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/notify"
	"github.com/tkellner/timeclock/internal/store"
)

// Engine drives the tracking lifecycle.
type Engine struct {
	store store.Store
	clock clock.Clock
	bus   *notify.Bus
}

// NewEngine creates an engine. bus may be nil.
func NewEngine(s store.Store, c clock.Clock, bus *notify.Bus) *Engine {
	return &Engine{store: s, clock: c, bus: bus}
}

// StartRequest describes a new tracking session. TaskID and ProjectID are
// both optional and may coexist.
type StartRequest struct {
	OwnerID     string
	TaskID      string
	ProjectID   string
	Description string
	Billable    bool
}

// StartSession opens a new running session for the owner. The store's
// uniqueness constraint guarantees at most one running session per owner
// even under concurrent calls: exactly one wins, the rest get AlreadyRunning.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (*models.TimeSession, error) {
	if req.OwnerID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "owner is required", nil)
	}

	sess := &models.TimeSession{
		OwnerID:     req.OwnerID,
		TaskID:      req.TaskID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Billable:    req.Billable,
		Origin:      models.OriginTracker,
		Status:      models.SessionStatusRunning,
		StartTime:   e.clock.Now(),
	}
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	if e.bus != nil {
		e.bus.Publish(notify.EventSessionStarted, sess.ID, sess.OwnerID)
	}
	return sess, nil
}

// StopSession closes a running session and credits its duration to the
// linked task. An empty sessionID resolves to the owner's current running
// session. A second stop on the same session is rejected with NotRunning so
// durations are never credited twice.
func (e *Engine) StopSession(ctx context.Context, ownerID, sessionID string) (*models.TimeSession, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "owner is required", nil)
	}

	sess, err := e.store.CloseSession(ctx, ownerID, sessionID, e.clock.Now())
	if err != nil {
		return nil, err
	}

	if e.bus != nil {
		e.bus.Publish(notify.EventSessionStopped, sess.ID, sess.OwnerID)
	}
	return sess, nil
}

// GetActiveSession returns the owner's running session, or nil when there is
// none. Pure read; may observe a slightly stale result under concurrency,
// which is fine for display but is never used for the start/stop decision.
func (e *Engine) GetActiveSession(ctx context.Context, ownerID string) (*models.TimeSession, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "owner is required", nil)
	}
	sess, err := e.store.GetRunningSession(ctx, ownerID)
	if err != nil {
		if apperr.HasReason(err, apperr.ReasonNoActiveSession) {
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

// DeleteSession removes a closed session owned by the caller. The session's
// contribution to its task total is reversed by the store.
func (e *Engine) DeleteSession(ctx context.Context, ownerID, sessionID string) error {
	if ownerID == "" {
		return apperr.New(apperr.InvalidArgument, "owner is required", nil)
	}
	if sessionID == "" {
		return apperr.New(apperr.InvalidArgument, "session id is required", nil)
	}
	return e.store.DeleteSession(ctx, ownerID, sessionID)
}

// ListSessions is the read-only projection over session history.
func (e *Engine) ListSessions(ctx context.Context, filter store.SessionListFilter) ([]*models.TimeSession, error) {
	return e.store.ListSessions(ctx, filter)
}

// SwitchOn activates the legacy per-task tracking flag and opens a
// legacy-origin session attributed to owner. The owner is required: there is
// no fallback identity for unattributed intervals.
func (e *Engine) SwitchOn(ctx context.Context, taskID, ownerID string) (*models.TimeSession, error) {
	if taskID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "task id is required", nil)
	}
	if ownerID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "owner is required", nil)
	}
	return e.store.SwitchOn(ctx, taskID, ownerID, e.clock.Now())
}

// SwitchOff deactivates the flag, credits the elapsed interval to the task
// total, and returns the seconds added.
func (e *Engine) SwitchOff(ctx context.Context, taskID string) (int64, error) {
	if taskID == "" {
		return 0, apperr.New(apperr.InvalidArgument, "task id is required", nil)
	}
	return e.store.SwitchOff(ctx, taskID, e.clock.Now())
}

// TaskTotal returns the accumulated tracked seconds for a task.
func (e *Engine) TaskTotal(ctx context.Context, taskID string) (int64, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	return task.TotalTimeSeconds, nil
}
