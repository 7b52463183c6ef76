package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tkellner/timeclock/internal/apperr"
	"github.com/tkellner/timeclock/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
//
// The one-running-session-per-owner rule is enforced by a partial unique
// index on time_sessions; a violated insert surfaces as an AlreadyRunning
// conflict. All check-then-write operations run in a single transaction, so
// a precondition failure never leaves partial state behind.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool, so
	// concurrent start/stop requests queue instead of failing with
	// "database is locked".
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Projects ---

func (s *SQLiteStore) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = newULID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperr.New(apperr.Internal, "create project", err)
	}
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("project not found: %s", id), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "get project", err)
	}
	return p, nil
}

// --- Tasks ---

const taskColumns = `id, project_id, title, creator_id, time_tracking_active, last_switch_on, total_time_seconds, accepted, accepted_by, accepted_at, created_at, updated_at`

func (s *SQLiteStore) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = newULID()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	var projectID any
	if t.ProjectID != "" {
		projectID = t.ProjectID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, creator_id, time_tracking_active, last_switch_on, total_time_seconds, accepted, accepted_by, accepted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, projectID, t.Title, t.CreatorID,
		boolToInt(t.TimeTrackingActive), t.LastSwitchOn, t.TotalTimeSeconds,
		boolToInt(t.Accepted), t.AcceptedBy, t.AcceptedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return apperr.New(apperr.Internal, "create task", err)
	}
	return nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("task not found: %s", id), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "get task", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context, projectID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperr.New(apperr.Internal, "scan task", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var projectID sql.NullString
	var lastSwitchOn, acceptedAt sql.NullTime

	err := r.Scan(&t.ID, &projectID, &t.Title, &t.CreatorID,
		&t.TimeTrackingActive, &lastSwitchOn, &t.TotalTimeSeconds,
		&t.Accepted, &t.AcceptedBy, &acceptedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		t.ProjectID = projectID.String
	}
	if lastSwitchOn.Valid {
		lt := lastSwitchOn.Time
		t.LastSwitchOn = &lt
	}
	if acceptedAt.Valid {
		at := acceptedAt.Time
		t.AcceptedAt = &at
	}
	return t, nil
}

// --- Time sessions ---

const sessionColumns = `id, owner_id, task_id, project_id, description, origin, status, start_time, end_time, duration_seconds, billable, clock_skew_flag, created_at, updated_at`

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.TimeSession) error {
	if sess.ID == "" {
		sess.ID = newULID()
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	if sess.Status == "" {
		sess.Status = models.SessionStatusRunning
	}
	if sess.Origin == "" {
		sess.Origin = models.OriginTracker
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_sessions (id, owner_id, task_id, project_id, description, origin, status, start_time, end_time, duration_seconds, billable, clock_skew_flag, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.OwnerID, sess.TaskID, sess.ProjectID, sess.Description,
		string(sess.Origin), string(sess.Status), sess.StartTime, sess.EndTime,
		sess.DurationSeconds, boolToInt(sess.Billable), boolToInt(sess.ClockSkewFlag),
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		// The partial unique index rejects a second running tracker session
		// for the same owner. This is a definitive business error, not a
		// retry condition.
		if strings.Contains(err.Error(), "UNIQUE constraint failed: time_sessions.owner_id") {
			return apperr.NewWithReason(apperr.Conflict, apperr.ReasonAlreadyRunning,
				"a running session already exists for this owner")
		}
		return apperr.New(apperr.Internal, "create session", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.TimeSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM time_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("session not found: %s", id), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "get session", err)
	}
	return sess, nil
}

func (s *SQLiteStore) GetRunningSession(ctx context.Context, ownerID string) (*models.TimeSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM time_sessions
		WHERE owner_id = ? AND status = 'running' AND origin = 'tracker'`, ownerID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonNoActiveSession,
			"no running session for this owner")
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "get running session", err)
	}
	return sess, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionListFilter) ([]*models.TimeSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM time_sessions`
	var conditions []string
	var args []any

	if filter.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.TaskID != "" {
		conditions = append(conditions, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "list sessions", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*models.TimeSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, apperr.New(apperr.Internal, "scan session", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(r rowScanner) (*models.TimeSession, error) {
	sess := &models.TimeSession{}
	var origin, status string
	var endTime sql.NullTime

	err := r.Scan(&sess.ID, &sess.OwnerID, &sess.TaskID, &sess.ProjectID,
		&sess.Description, &origin, &status, &sess.StartTime, &endTime,
		&sess.DurationSeconds, &sess.Billable, &sess.ClockSkewFlag,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sess.Origin = models.SessionOrigin(origin)
	sess.Status = models.SessionStatus(status)
	if endTime.Valid {
		et := endTime.Time
		sess.EndTime = &et
	}
	return sess, nil
}

// CloseSession stops a running tracker session and credits its duration to
// the linked task, all in one transaction. An empty sessionID resolves to
// the owner's current running session.
func (s *SQLiteStore) CloseSession(ctx context.Context, ownerID, sessionID string, end time.Time) (*models.TimeSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row *sql.Row
	if sessionID == "" {
		row = tx.QueryRowContext(ctx,
			`SELECT `+sessionColumns+` FROM time_sessions
			WHERE owner_id = ? AND status = 'running' AND origin = 'tracker'`, ownerID)
	} else {
		row = tx.QueryRowContext(ctx,
			`SELECT `+sessionColumns+` FROM time_sessions WHERE id = ?`, sessionID)
	}

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		if sessionID == "" {
			return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonNoActiveSession,
				"no running session for this owner")
		}
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("session not found: %s", sessionID), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "close session: read", err)
	}

	if sess.OwnerID != ownerID {
		return nil, apperr.NewWithReason(apperr.Forbidden, apperr.ReasonNotOwner,
			"session belongs to a different owner")
	}
	if sess.Origin == models.OriginLegacy {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonSwitchState,
			"session is managed by the task switch")
	}
	if sess.Status != models.SessionStatusRunning {
		// A second stop on an already-stopped session is rejected so the
		// duration is only ever credited once.
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonNotRunning,
			"session is not running")
	}

	duration := int64(end.Sub(sess.StartTime) / time.Second)
	skew := false
	if duration < 0 {
		duration = 0
		skew = true
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE time_sessions SET status = 'stopped', end_time = ?, duration_seconds = ?, clock_skew_flag = ?, updated_at = ?
		WHERE id = ? AND status = 'running'`,
		end, duration, boolToInt(skew), now, sess.ID,
	)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "close session: update", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonNotRunning,
			"session is not running")
	}

	if sess.TaskID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET total_time_seconds = total_time_seconds + ?, updated_at = ? WHERE id = ?`,
			duration, now, sess.TaskID,
		); err != nil {
			return nil, apperr.New(apperr.Internal, "close session: credit task", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.New(apperr.Internal, "commit tx", err)
	}

	sess.Status = models.SessionStatusStopped
	sess.EndTime = &end
	sess.DurationSeconds = duration
	sess.ClockSkewFlag = skew
	sess.UpdatedAt = now
	return sess, nil
}

// DeleteSession removes a closed session owned by ownerID. The session's
// contribution to its task total is reversed in the same transaction so the
// aggregate stays equal to the sum of remaining closed sessions.
func (s *SQLiteStore) DeleteSession(ctx context.Context, ownerID, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.New(apperr.Internal, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM time_sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return apperr.New(apperr.NotFound, fmt.Sprintf("session not found: %s", sessionID), err)
	}
	if err != nil {
		return apperr.New(apperr.Internal, "delete session: read", err)
	}

	if sess.OwnerID != ownerID {
		return apperr.NewWithReason(apperr.Forbidden, apperr.ReasonNotOwner,
			"session belongs to a different owner")
	}
	if sess.Status == models.SessionStatusRunning {
		return apperr.NewWithReason(apperr.Conflict, apperr.ReasonStillRunning,
			"cannot delete a running session")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_sessions WHERE id = ?`, sessionID); err != nil {
		return apperr.New(apperr.Internal, "delete session", err)
	}

	if sess.TaskID != "" && sess.DurationSeconds > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET total_time_seconds = MAX(0, total_time_seconds - ?), updated_at = ? WHERE id = ?`,
			sess.DurationSeconds, time.Now().UTC(), sess.TaskID,
		); err != nil {
			return apperr.New(apperr.Internal, "delete session: debit task", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.New(apperr.Internal, "commit tx", err)
	}
	return nil
}

// --- Legacy per-task switch ---

// SwitchOn flips the task's tracking flag and opens a legacy-origin session
// for it. The flag is the mutual-exclusion domain here: the guarded update
// resolves concurrent switch-on calls to one winner.
func (s *SQLiteStore) SwitchOn(ctx context.Context, taskID, ownerID string, now time.Time) (*models.TimeSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var active bool
	err = tx.QueryRowContext(ctx,
		`SELECT time_tracking_active FROM tasks WHERE id = ?`, taskID).Scan(&active)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("task not found: %s", taskID), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "switch on: read task", err)
	}
	if active {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonSwitchState,
			"time tracking is already switched on for this task")
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks SET time_tracking_active = 1, last_switch_on = ?, updated_at = ?
		WHERE id = ? AND time_tracking_active = 0`,
		now, now, taskID,
	)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "switch on: update task", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonSwitchState,
			"time tracking is already switched on for this task")
	}

	sess := &models.TimeSession{
		ID:        newULID(),
		OwnerID:   ownerID,
		TaskID:    taskID,
		Origin:    models.OriginLegacy,
		Status:    models.SessionStatusRunning,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO time_sessions (id, owner_id, task_id, project_id, description, origin, status, start_time, end_time, duration_seconds, billable, clock_skew_flag, created_at, updated_at)
		VALUES (?, ?, ?, '', '', 'legacy', 'running', ?, NULL, 0, 0, 0, ?, ?)`,
		sess.ID, sess.OwnerID, sess.TaskID, sess.StartTime, sess.CreatedAt, sess.UpdatedAt,
	); err != nil {
		return nil, apperr.New(apperr.Internal, "switch on: open session", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.New(apperr.Internal, "commit tx", err)
	}
	return sess, nil
}

// SwitchOff flips the flag back, credits the elapsed interval to the task
// total, and closes the most recently opened legacy session for the task so
// the session history matches the aggregate.
func (s *SQLiteStore) SwitchOff(ctx context.Context, taskID string, now time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.New(apperr.Internal, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var active bool
	var lastSwitchOn sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT time_tracking_active, last_switch_on FROM tasks WHERE id = ?`, taskID).
		Scan(&active, &lastSwitchOn)
	if err == sql.ErrNoRows {
		return 0, apperr.New(apperr.NotFound, fmt.Sprintf("task not found: %s", taskID), err)
	}
	if err != nil {
		return 0, apperr.New(apperr.Internal, "switch off: read task", err)
	}
	if !active || !lastSwitchOn.Valid {
		return 0, apperr.NewWithReason(apperr.Conflict, apperr.ReasonSwitchState,
			"time tracking is not switched on for this task")
	}

	duration := int64(now.Sub(lastSwitchOn.Time) / time.Second)
	if duration < 0 {
		duration = 0
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks SET time_tracking_active = 0, last_switch_on = NULL,
			total_time_seconds = total_time_seconds + ?, updated_at = ?
		WHERE id = ? AND time_tracking_active = 1`,
		duration, now, taskID,
	)
	if err != nil {
		return 0, apperr.New(apperr.Internal, "switch off: update task", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, apperr.NewWithReason(apperr.Conflict, apperr.ReasonSwitchState,
			"time tracking is not switched on for this task")
	}

	// Best-effort reconciliation: close the open legacy session for this
	// task with the same end time and duration.
	if _, err := tx.ExecContext(ctx,
		`UPDATE time_sessions SET status = 'stopped', end_time = ?, duration_seconds = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM time_sessions
			WHERE task_id = ? AND origin = 'legacy' AND status = 'running'
			ORDER BY start_time DESC LIMIT 1
		)`,
		now, duration, now, taskID,
	); err != nil {
		return 0, apperr.New(apperr.Internal, "switch off: close session", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.New(apperr.Internal, "commit tx", err)
	}
	return duration, nil
}

// --- Assignments ---

const assignmentColumns = `id, task_id, assignee_id, acceptance_status, accepted_by, accepted_datetime, created_at, updated_at`

func (s *SQLiteStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = newULID()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.AcceptanceStatus == "" {
		a.AcceptanceStatus = models.AcceptancePending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, task_id, assignee_id, acceptance_status, accepted_by, accepted_datetime, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TaskID, a.AssigneeID, string(a.AcceptanceStatus),
		a.AcceptedBy, a.AcceptedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return apperr.New(apperr.Internal, "create assignment", err)
	}
	return nil
}

func (s *SQLiteStore) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("assignment not found: %s", id), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "get assignment", err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAssignments(ctx context.Context, filter AssignmentListFilter) ([]*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	var conditions []string
	var args []any

	if filter.TaskID != "" {
		conditions = append(conditions, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if filter.AssigneeID != "" {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "acceptance_status = ?")
		args = append(args, string(filter.Status))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "list assignments", err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []*models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, apperr.New(apperr.Internal, "scan assignment", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func scanAssignment(r rowScanner) (*models.Assignment, error) {
	a := &models.Assignment{}
	var status string
	var acceptedAt sql.NullTime

	err := r.Scan(&a.ID, &a.TaskID, &a.AssigneeID, &status,
		&a.AcceptedBy, &acceptedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.AcceptanceStatus = models.AcceptanceStatus(status)
	if acceptedAt.Valid {
		at := acceptedAt.Time
		a.AcceptedAt = &at
	}
	return a, nil
}

// resolveAssignment reads an assignment inside tx and checks the actor and
// pending preconditions shared by accept and reject.
func resolveAssignment(ctx context.Context, tx *sql.Tx, id, actorID string) (*models.Assignment, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("assignment not found: %s", id), err)
	}
	if err != nil {
		return nil, apperr.New(apperr.Internal, "read assignment", err)
	}

	if a.AssigneeID != actorID {
		return nil, apperr.NewWithReason(apperr.Forbidden, apperr.ReasonNotAssignee,
			"assignment belongs to a different assignee")
	}
	if a.AcceptanceStatus.Resolved() {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonAlreadyResolved,
			fmt.Sprintf("assignment already %s", a.AcceptanceStatus))
	}
	return a, nil
}

// AcceptAssignment moves a pending assignment to accepted and mirrors the
// acceptance onto the task, atomically.
func (s *SQLiteStore) AcceptAssignment(ctx context.Context, id, actorID string, now time.Time) (*models.Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	a, err := resolveAssignment(ctx, tx, id, actorID)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE assignments SET acceptance_status = 'accepted', accepted_by = ?, accepted_datetime = ?, updated_at = ?
		WHERE id = ? AND acceptance_status = 'pending'`,
		actorID, now, now, id,
	)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "accept assignment", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonAlreadyResolved,
			"assignment already resolved")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET accepted = 1, accepted_by = ?, accepted_at = ?, updated_at = ? WHERE id = ?`,
		actorID, now, now, a.TaskID,
	); err != nil {
		return nil, apperr.New(apperr.Internal, "accept assignment: mirror task", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.New(apperr.Internal, "commit tx", err)
	}

	a.AcceptanceStatus = models.AcceptanceAccepted
	a.AcceptedBy = actorID
	a.AcceptedAt = &now
	a.UpdatedAt = now
	return a, nil
}

// RejectAssignment moves a pending assignment to rejected. The task row is
// returned so the caller can notify the task's creator; the notification is
// outside this transaction and must not roll back the rejection.
func (s *SQLiteStore) RejectAssignment(ctx context.Context, id, actorID string, now time.Time) (*models.Assignment, *models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, apperr.New(apperr.Internal, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	a, err := resolveAssignment(ctx, tx, id, actorID)
	if err != nil {
		return nil, nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE assignments SET acceptance_status = 'rejected', updated_at = ?
		WHERE id = ? AND acceptance_status = 'pending'`,
		now, id,
	)
	if err != nil {
		return nil, nil, apperr.New(apperr.Internal, "reject assignment", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil, apperr.NewWithReason(apperr.Conflict, apperr.ReasonAlreadyResolved,
			"assignment already resolved")
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, a.TaskID)
	task, err := scanTask(row)
	if err != nil {
		return nil, nil, apperr.New(apperr.Internal, "reject assignment: read task", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, apperr.New(apperr.Internal, "commit tx", err)
	}

	a.AcceptanceStatus = models.AcceptanceRejected
	a.UpdatedAt = now
	return a, task, nil
}

// --- Notifications ---

func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.NotificationEvent) error {
	if n.ID == "" {
		n.ID = newULID()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_events (id, recipient_id, type, task_id, actor_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RecipientID, string(n.Type), n.TaskID, n.ActorID, n.Message,
		boolToInt(n.Read), n.CreatedAt,
	)
	if err != nil {
		return apperr.New(apperr.Internal, "create notification", err)
	}
	return nil
}

func (s *SQLiteStore) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]*models.NotificationEvent, error) {
	query := `SELECT id, recipient_id, type, task_id, actor_id, message, read, created_at
		FROM notification_events WHERE recipient_id = ?`
	args := []any{recipientID}
	if unreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "list notifications", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*models.NotificationEvent
	for rows.Next() {
		n := &models.NotificationEvent{}
		var typ string
		if err := rows.Scan(&n.ID, &n.RecipientID, &typ, &n.TaskID, &n.ActorID,
			&n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, apperr.New(apperr.Internal, "scan notification", err)
		}
		n.Type = models.NotificationType(typ)
		events = append(events, n)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, recipientID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notification_events SET read = 1 WHERE id = ? AND recipient_id = ?`,
		id, recipientID,
	)
	if err != nil {
		return apperr.New(apperr.Internal, "mark notification read", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, fmt.Sprintf("notification not found: %s", id), nil)
	}
	return nil
}
