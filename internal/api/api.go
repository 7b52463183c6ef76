package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tkellner/timeclock/internal/apperr"
	"github.com/tkellner/timeclock/internal/assignment"
	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/store"
	"github.com/tkellner/timeclock/internal/timer"
)

// actorHeader carries the authenticated actor's stable identifier. The API
// trusts the value: authentication itself happens upstream.
const actorHeader = "X-Actor-ID"

// Server provides the REST API handlers.
type Server struct {
	store       store.Store
	engine      *timer.Engine
	assignments *assignment.Service
}

// NewServer creates a new API server.
func NewServer(s store.Store, engine *timer.Engine, assignments *assignment.Service) *Server {
	return &Server{
		store:       s,
		engine:      engine,
		assignments: assignments,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/tracker/start", s.startSession)
	mux.HandleFunc("POST /api/v1/tracker/stop", s.stopSession)
	mux.HandleFunc("GET /api/v1/tracker/active", s.activeSession)

	mux.HandleFunc("GET /api/v1/sessions", s.listSessions)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.getSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.deleteSession)

	mux.HandleFunc("POST /api/v1/projects", s.createProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", s.getProject)

	mux.HandleFunc("POST /api/v1/tasks", s.createTask)
	mux.HandleFunc("GET /api/v1/tasks", s.listTasks)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.getTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/switch-on", s.switchOn)
	mux.HandleFunc("POST /api/v1/tasks/{id}/switch-off", s.switchOff)
	mux.HandleFunc("GET /api/v1/tasks/{id}/total", s.taskTotal)

	mux.HandleFunc("POST /api/v1/assignments", s.createAssignment)
	mux.HandleFunc("GET /api/v1/assignments", s.listAssignments)
	mux.HandleFunc("GET /api/v1/assignments/{id}", s.getAssignment)
	mux.HandleFunc("POST /api/v1/assignments/{id}/accept", s.acceptAssignment)
	mux.HandleFunc("POST /api/v1/assignments/{id}/reject", s.rejectAssignment)

	mux.HandleFunc("GET /api/v1/notifications", s.listNotifications)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", s.markNotificationRead)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+actorHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of every error response. Reason lets a UI
// disambiguate conflicts ("you already have a running timer" vs "this
// session is already stopped") without parsing messages.
type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		writeJSON(w, ae.Code.HTTPCode(), errorBody{
			Error:  ae.Msg,
			Code:   ae.Code.String(),
			Reason: string(ae.Reason),
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error: err.Error(),
		Code:  apperr.Internal.String(),
	})
}

// actor extracts the authenticated actor id, writing a 400 when absent.
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(actorHeader)
	if id == "" {
		writeError(w, apperr.New(apperr.InvalidArgument, "missing "+actorHeader+" header", nil))
		return "", false
	}
	return id, true
}

// --- Tracker ---

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := actor(w, r)
	if !ok {
		return
	}

	var req struct {
		TaskID      string `json:"task_id"`
		ProjectID   string `json:"project_id"`
		Description string `json:"description"`
		Billable    bool   `json:"billable"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.New(apperr.InvalidArgument, "invalid JSON", err))
			return
		}
	}

	sess, err := s.engine.StartSession(r.Context(), timer.StartRequest{
		OwnerID:     ownerID,
		TaskID:      req.TaskID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Billable:    req.Billable,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := actor(w, r)
	if !ok {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.New(apperr.InvalidArgument, "invalid JSON", err))
			return
		}
	}

	sess, err := s.engine.StopSession(r.Context(), ownerID, req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) activeSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := actor(w, r)
	if !ok {
		return
	}

	sess, err := s.engine.GetActiveSession(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": true, "session": sess})
}

// --- Sessions ---

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	filter := store.SessionListFilter{
		OwnerID: r.URL.Query().Get("owner_id"),
		TaskID:  r.URL.Query().Get("task_id"),
		Status:  models.SessionStatus(r.URL.Query().Get("status")),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}

	sessions, err := s.engine.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*models.TimeSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := actor(w, r)
	if !ok {
		return
	}
	if err := s.engine.DeleteSession(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Projects ---

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, apperr.New(apperr.InvalidArgument, "invalid JSON", err))
		return
	}
	if p.Name == "" {
		writeError(w, apperr.New(apperr.InvalidArgument, "name is required", nil))
		return
	}
	if err := s.store.CreateProject(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- Tasks ---

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := actor(w, r)
	if !ok {
		return
	}

	var req struct {
		ProjectID string `json:"project_id"`
		Title     string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.InvalidArgument, "invalid JSON", err))
		return
	}
	if req.Title == "" {
		writeError(w, apperr.New(apperr.InvalidArgument, "title is required", nil))
		return
	}

	task := &models.Task{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		CreatorID: creatorID,
	}
	if err := s.store.CreateTask(r.Context(), task); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) switchOn(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := actor(w, r)
	if !ok {
		return
	}
	sess, err := s.engine.SwitchOn(r.Context(), r.PathValue("id"), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) switchOff(w http.ResponseWriter, r *http.Request) {
	duration, err := s.engine.SwitchOff(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"duration_added": duration})
}

func (s *Server) taskTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.engine.TaskTotal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_time_seconds": total})
}

// --- Assignments ---

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID     string `json:"task_id"`
		AssigneeID string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.InvalidArgument, "invalid JSON", err))
		return
	}

	a, err := s.assignments.Assign(r.Context(), req.TaskID, req.AssigneeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	filter := store.AssignmentListFilter{
		TaskID:     r.URL.Query().Get("task_id"),
		AssigneeID: r.URL.Query().Get("assignee_id"),
		Status:     models.AcceptanceStatus(r.URL.Query().Get("status")),
	}
	assignments, err := s.assignments.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if assignments == nil {
		assignments = []*models.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (s *Server) getAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assignments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) acceptAssignment(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	a, err := s.assignments.Accept(r.Context(), r.PathValue("id"), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) rejectAssignment(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	a, err := s.assignments.Reject(r.Context(), r.PathValue("id"), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// --- Notifications ---

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := actor(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	events, err := s.store.ListNotifications(r.Context(), recipientID, unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []*models.NotificationEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := actor(w, r)
	if !ok {
		return
	}
	if err := s.store.MarkNotificationRead(r.Context(), recipientID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
