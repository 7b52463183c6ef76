package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkellner/timeclock/internal/apperr"
	"github.com/tkellner/timeclock/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTask(t *testing.T, s *SQLiteStore, title string) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, CreatorID: "creator-1"}
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

// --- Project CRUD ---

func TestProjectCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.Project{Name: "apollo"}
	err := s.CreateProject(ctx, p)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "apollo", got.Name)

	_, err = s.GetProject(ctx, "nope")
	assert.True(t, apperr.IsCode(err, apperr.NotFound))
}

// --- Task CRUD ---

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.Project{Name: "apollo"}
	require.NoError(t, s.CreateProject(ctx, p))

	task := &models.Task{ProjectID: p.ID, Title: "Write report", CreatorID: "alice"}
	err := s.CreateTask(ctx, task)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "alice", got.CreatorID)
	assert.False(t, got.TimeTrackingActive)
	assert.Zero(t, got.TotalTimeSeconds)
	assert.Nil(t, got.LastSwitchOn)

	other := &models.Task{Title: "Unscoped task", CreatorID: "bob"}
	require.NoError(t, s.CreateTask(ctx, other))

	inProject, err := s.ListTasks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, inProject, 1)
	assert.Equal(t, task.ID, inProject[0].ID)

	all, err := s.ListTasks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// --- Session lifecycle ---

func TestCreateSession_Defaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.TimeSession{
		OwnerID:   "alice",
		StartTime: time.Now().UTC(),
	}
	require.NoError(t, s.CreateSession(ctx, sess))
	assert.NotEmpty(t, sess.ID)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusRunning, got.Status)
	assert.Equal(t, models.OriginTracker, got.Origin)
	assert.Nil(t, got.EndTime)
}

func TestCreateSession_SecondRunningRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateSession(ctx, first))

	second := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
	err := s.CreateSession(ctx, second)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Conflict))
	assert.True(t, apperr.HasReason(err, apperr.ReasonAlreadyRunning))

	// A different owner is unaffected.
	other := &models.TimeSession{OwnerID: "bob", StartTime: time.Now().UTC()}
	assert.NoError(t, s.CreateSession(ctx, other))
}

func TestCreateSession_ConcurrentStarts_OneWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
			errs[i] = s.CreateSession(ctx, sess)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperr.HasReason(err, apperr.ReasonAlreadyRunning))
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent start should win")

	running, err := s.ListSessions(ctx, SessionListFilter{OwnerID: "alice", Status: models.SessionStatusRunning})
	require.NoError(t, err)
	assert.Len(t, running, 1)
}

func TestGetRunningSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRunningSession(ctx, "alice")
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonNoActiveSession))

	sess := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateSession(ctx, sess))

	got, err := s.GetRunningSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestCloseSession_CreditsTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess := &models.TimeSession{OwnerID: "alice", TaskID: task.ID, StartTime: start}
	require.NoError(t, s.CreateSession(ctx, sess))

	end := start.Add(2*time.Minute + 5*time.Second)
	closed, err := s.CloseSession(ctx, "alice", sess.ID, end)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusStopped, closed.Status)
	assert.Equal(t, int64(125), closed.DurationSeconds)
	require.NotNil(t, closed.EndTime)
	assert.False(t, closed.ClockSkewFlag)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(125), got.TotalTimeSeconds)
}

func TestCloseSession_ByOwnerWithoutID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Minute)
	sess := &models.TimeSession{OwnerID: "alice", StartTime: start}
	require.NoError(t, s.CreateSession(ctx, sess))

	closed, err := s.CloseSession(ctx, "alice", "", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, sess.ID, closed.ID)

	// With nothing running, the empty-id form reports no active session.
	_, err = s.CloseSession(ctx, "alice", "", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonNoActiveSession))
}

func TestCloseSession_SecondStopRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess := &models.TimeSession{OwnerID: "alice", TaskID: task.ID, StartTime: start}
	require.NoError(t, s.CreateSession(ctx, sess))

	end := start.Add(time.Minute)
	_, err := s.CloseSession(ctx, "alice", sess.ID, end)
	require.NoError(t, err)

	_, err = s.CloseSession(ctx, "alice", sess.ID, end.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Conflict))
	assert.True(t, apperr.HasReason(err, apperr.ReasonNotRunning))

	// The duration was credited exactly once.
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.TotalTimeSeconds)
}

func TestCloseSession_NotOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateSession(ctx, sess))

	_, err := s.CloseSession(ctx, "bob", sess.ID, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Forbidden))
	assert.True(t, apperr.HasReason(err, apperr.ReasonNotOwner))
}

func TestCloseSession_ClockSkewClampsToZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess := &models.TimeSession{OwnerID: "alice", TaskID: task.ID, StartTime: start}
	require.NoError(t, s.CreateSession(ctx, sess))

	closed, err := s.CloseSession(ctx, "alice", sess.ID, start.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, closed.DurationSeconds)
	assert.True(t, closed.ClockSkewFlag)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalTimeSeconds)
}

func TestCloseSession_LegacySessionRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Shared task")

	sess, err := s.SwitchOn(ctx, task.ID, "alice", time.Now().UTC())
	require.NoError(t, err)

	_, err = s.CloseSession(ctx, "alice", sess.ID, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonSwitchState))
}

func TestDeleteSession_RebalancesTaskTotal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, dur := range []time.Duration{100 * time.Second, 50 * time.Second} {
		sess := &models.TimeSession{OwnerID: "alice", TaskID: task.ID, StartTime: start.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.CreateSession(ctx, sess))
		_, err := s.CloseSession(ctx, "alice", sess.ID, sess.StartTime.Add(dur))
		require.NoError(t, err)
	}

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, int64(150), got.TotalTimeSeconds)

	sessions, err := s.ListSessions(ctx, SessionListFilter{TaskID: task.ID})
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Sessions come newest first; delete the 50s one.
	require.NoError(t, s.DeleteSession(ctx, "alice", sessions[0].ID))

	got, err = s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.TotalTimeSeconds)

	_, err = s.GetSession(ctx, sessions[0].ID)
	assert.True(t, apperr.IsCode(err, apperr.NotFound))
}

func TestDeleteSession_RunningRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateSession(ctx, sess))

	err := s.DeleteSession(ctx, "alice", sess.ID)
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonStillRunning))
}

func TestDeleteSession_NotOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Minute)
	sess := &models.TimeSession{OwnerID: "alice", StartTime: start}
	require.NoError(t, s.CreateSession(ctx, sess))
	_, err := s.CloseSession(ctx, "alice", sess.ID, time.Now().UTC())
	require.NoError(t, err)

	err = s.DeleteSession(ctx, "bob", sess.ID)
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonNotOwner))
}

func TestListSessions_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &models.TimeSession{OwnerID: "alice", TaskID: task.ID, StartTime: start}
	require.NoError(t, s.CreateSession(ctx, a))
	_, err := s.CloseSession(ctx, "alice", a.ID, start.Add(time.Minute))
	require.NoError(t, err)

	b := &models.TimeSession{OwnerID: "bob", StartTime: start.Add(time.Hour)}
	require.NoError(t, s.CreateSession(ctx, b))

	byOwner, err := s.ListSessions(ctx, SessionListFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, a.ID, byOwner[0].ID)

	byStatus, err := s.ListSessions(ctx, SessionListFilter{Status: models.SessionStatusRunning})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, b.ID, byStatus[0].ID)

	limited, err := s.ListSessions(ctx, SessionListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, b.ID, limited[0].ID, "newest first")
}

// --- Per-task switch ---

func TestSwitchOnOff_CreditsElapsed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Shared task")

	on := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess, err := s.SwitchOn(ctx, task.ID, "alice", on)
	require.NoError(t, err)
	assert.Equal(t, models.OriginLegacy, sess.Origin)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.TimeTrackingActive)
	require.NotNil(t, got.LastSwitchOn)

	dur, err := s.SwitchOff(ctx, task.ID, on.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(90), dur)

	got, err = s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.TimeTrackingActive)
	assert.Nil(t, got.LastSwitchOn)
	assert.Equal(t, int64(90), got.TotalTimeSeconds)

	// The legacy session is closed with matching duration.
	closed, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusStopped, closed.Status)
	assert.Equal(t, int64(90), closed.DurationSeconds)
}

func TestSwitchOn_AlreadyOn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Shared task")

	_, err := s.SwitchOn(ctx, task.ID, "alice", time.Now().UTC())
	require.NoError(t, err)

	_, err = s.SwitchOn(ctx, task.ID, "bob", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Conflict))
	assert.True(t, apperr.HasReason(err, apperr.ReasonSwitchState))
}

func TestSwitchOff_NotOn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Shared task")

	_, err := s.SwitchOff(ctx, task.ID, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonSwitchState))
}

func TestSwitchOn_RepeatedCycles_Accumulate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Shared task")

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.SwitchOn(ctx, task.ID, "alice", at)
		require.NoError(t, err)
		_, err = s.SwitchOff(ctx, task.ID, at.Add(30*time.Second))
		require.NoError(t, err)
		at = at.Add(time.Hour)
	}

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), got.TotalTimeSeconds)
}

func TestSwitchOn_DoesNotBlockPersonalSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Shared task")

	// Alice has a running personal session.
	personal := &models.TimeSession{OwnerID: "alice", StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateSession(ctx, personal))

	// Switching the task on under Alice's id still works: the legacy
	// session lives in a separate mutual-exclusion domain.
	_, err := s.SwitchOn(ctx, task.ID, "alice", time.Now().UTC())
	assert.NoError(t, err)

	// And her personal session is still the one running tracker session.
	got, err := s.GetRunningSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, personal.ID, got.ID)
}

// --- Assignments ---

func TestAcceptAssignment_MirrorsTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	a := &models.Assignment{TaskID: task.ID, AssigneeID: "bob"}
	require.NoError(t, s.CreateAssignment(ctx, a))
	assert.Equal(t, models.AcceptancePending, a.AcceptanceStatus)

	now := time.Now().UTC()
	accepted, err := s.AcceptAssignment(ctx, a.ID, "bob", now)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, accepted.AcceptanceStatus)
	assert.Equal(t, "bob", accepted.AcceptedBy)
	require.NotNil(t, accepted.AcceptedAt)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted)
	assert.Equal(t, "bob", got.AcceptedBy)
	require.NotNil(t, got.AcceptedAt)
}

func TestRejectAssignment_ReturnsTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	a := &models.Assignment{TaskID: task.ID, AssigneeID: "bob"}
	require.NoError(t, s.CreateAssignment(ctx, a))

	rejected, rtask, err := s.RejectAssignment(ctx, a.ID, "bob", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceRejected, rejected.AcceptanceStatus)
	require.NotNil(t, rtask)
	assert.Equal(t, task.ID, rtask.ID)
	assert.Equal(t, "creator-1", rtask.CreatorID)

	// The task itself is not marked accepted.
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Accepted)
}

func TestResolveAssignment_OnlyAssignee(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	a := &models.Assignment{TaskID: task.ID, AssigneeID: "bob"}
	require.NoError(t, s.CreateAssignment(ctx, a))

	_, err := s.AcceptAssignment(ctx, a.ID, "mallory", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.Forbidden))
	assert.True(t, apperr.HasReason(err, apperr.ReasonNotAssignee))

	_, _, err = s.RejectAssignment(ctx, a.ID, "mallory", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonNotAssignee))
}

func TestResolveAssignment_Terminal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := newTestTask(t, s, "Write report")

	a := &models.Assignment{TaskID: task.ID, AssigneeID: "bob"}
	require.NoError(t, s.CreateAssignment(ctx, a))

	_, err := s.AcceptAssignment(ctx, a.ID, "bob", time.Now().UTC())
	require.NoError(t, err)

	// Accepting again, or rejecting after acceptance, is a conflict.
	_, err = s.AcceptAssignment(ctx, a.ID, "bob", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonAlreadyResolved))

	_, _, err = s.RejectAssignment(ctx, a.ID, "bob", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperr.HasReason(err, apperr.ReasonAlreadyResolved))
}

func TestListAssignments_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t1 := newTestTask(t, s, "Task one")
	t2 := newTestTask(t, s, "Task two")

	a1 := &models.Assignment{TaskID: t1.ID, AssigneeID: "bob"}
	require.NoError(t, s.CreateAssignment(ctx, a1))
	a2 := &models.Assignment{TaskID: t2.ID, AssigneeID: "carol"}
	require.NoError(t, s.CreateAssignment(ctx, a2))
	_, err := s.AcceptAssignment(ctx, a2.ID, "carol", time.Now().UTC())
	require.NoError(t, err)

	byTask, err := s.ListAssignments(ctx, AssignmentListFilter{TaskID: t1.ID})
	require.NoError(t, err)
	require.Len(t, byTask, 1)
	assert.Equal(t, a1.ID, byTask[0].ID)

	pending, err := s.ListAssignments(ctx, AssignmentListFilter{Status: models.AcceptancePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a1.ID, pending[0].ID)

	byAssignee, err := s.ListAssignments(ctx, AssignmentListFilter{AssigneeID: "carol"})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	assert.Equal(t, a2.ID, byAssignee[0].ID)
}

// --- Notifications ---

func TestNotifications_ListAndMarkRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n1 := &models.NotificationEvent{
		RecipientID: "alice",
		Type:        models.NotificationTaskRejected,
		ActorID:     "bob",
		Message:     "task was rejected",
	}
	require.NoError(t, s.CreateNotification(ctx, n1))

	n2 := &models.NotificationEvent{
		RecipientID: "carol",
		Type:        models.NotificationTaskRejected,
		ActorID:     "bob",
		Message:     "task was rejected",
	}
	require.NoError(t, s.CreateNotification(ctx, n2))

	// Each recipient only sees their own row.
	forAlice, err := s.ListNotifications(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, forAlice, 1)
	assert.Equal(t, n1.ID, forAlice[0].ID)
	assert.False(t, forAlice[0].Read)

	require.NoError(t, s.MarkNotificationRead(ctx, "alice", n1.ID))

	unread, err := s.ListNotifications(ctx, "alice", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// Carol's copy is independent of Alice's read state.
	forCarol, err := s.ListNotifications(ctx, "carol", true)
	require.NoError(t, err)
	require.Len(t, forCarol, 1)
}

func TestMarkNotificationRead_WrongRecipient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := &models.NotificationEvent{
		RecipientID: "alice",
		Type:        models.NotificationTaskRejected,
		Message:     "task was rejected",
	}
	require.NoError(t, s.CreateNotification(ctx, n))

	err := s.MarkNotificationRead(ctx, "bob", n.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.NotFound))
}
