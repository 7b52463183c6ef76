package assignment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkellner/timeclock/internal/apperr"
	"github.com/tkellner/timeclock/internal/clock"
	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/notify"
	"github.com/tkellner/timeclock/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s := newTestStore(t)
	return newServiceWith(s), s
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func newServiceWith(s store.Store) *Service {
	c := &clock.Fixed{T: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	bus := notify.NewBus()
	return NewService(s, c, notify.New(s, bus), bus)
}

func createTask(t *testing.T, s store.Store, creatorID string) *models.Task {
	t.Helper()
	task := &models.Task{Title: "Write report", CreatorID: creatorID}
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func TestAssign_CreatesPending(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, s, "alice")

	a, err := svc.Assign(ctx, task.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AcceptancePending, a.AcceptanceStatus)
	assert.Equal(t, "bob", a.AssigneeID)
}

func TestAssign_UnknownTask(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Assign(context.Background(), "nope", "bob")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.NotFound))
}

func TestAssign_Validation(t *testing.T) {
	svc, s := newTestService(t)
	task := createTask(t, s, "alice")

	_, err := svc.Assign(context.Background(), "", "bob")
	assert.True(t, apperr.IsCode(err, apperr.InvalidArgument))

	_, err = svc.Assign(context.Background(), task.ID, "")
	assert.True(t, apperr.IsCode(err, apperr.InvalidArgument))
}

func TestAccept_ResolvesAndMirrors(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, s, "alice")

	a, err := svc.Assign(ctx, task.ID, "bob")
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, accepted.AcceptanceStatus)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted)
	assert.Equal(t, "bob", got.AcceptedBy)
}

func TestReject_NotifiesCreator(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, s, "alice")

	a, err := svc.Assign(ctx, task.ID, "bob")
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceRejected, rejected.AcceptanceStatus)

	// The creator has one unread notification naming the task.
	events, err := s.ListNotifications(ctx, "alice", true)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationTaskRejected, events[0].Type)
	assert.Equal(t, task.ID, events[0].TaskID)
	assert.Equal(t, "bob", events[0].ActorID)
	assert.Contains(t, events[0].Message, "Write report")

	// The assignee does not get a copy of their own rejection.
	own, err := s.ListNotifications(ctx, "bob", false)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestResolve_TerminalStates(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, s, "alice")

	a, err := svc.Assign(ctx, task.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Reject(ctx, a.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, a.ID, "bob")
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonAlreadyResolved))

	_, err = svc.Reject(ctx, a.ID, "bob")
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonAlreadyResolved))

	// Only one notification was recorded despite the retries.
	events, err := s.ListNotifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestResolve_OnlyAssignee(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, s, "alice")

	a, err := svc.Assign(ctx, task.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, a.ID, "mallory")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Forbidden))

	_, err = svc.Reject(ctx, a.ID, "mallory")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Forbidden))

	// Still pending for the real assignee.
	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptancePending, got.AcceptanceStatus)
}

// notifyFailStore makes notification writes fail while everything else works.
type notifyFailStore struct {
	store.Store
}

func (f *notifyFailStore) CreateNotification(ctx context.Context, n *models.NotificationEvent) error {
	return errors.New("notification store unavailable")
}

func TestReject_SurvivesNotificationFailure(t *testing.T) {
	base := newTestStore(t)
	failing := &notifyFailStore{Store: base}
	svc := newServiceWith(failing)
	ctx := context.Background()
	task := createTask(t, base, "alice")

	a, err := svc.Assign(ctx, task.ID, "bob")
	require.NoError(t, err)

	// The rejection commits even though the notification write fails.
	rejected, err := svc.Reject(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceRejected, rejected.AcceptanceStatus)

	got, err := base.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceRejected, got.AcceptanceStatus)

	events, err := base.ListNotifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Empty(t, events)
}
