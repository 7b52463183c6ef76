package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tkellner/timeclock/internal/assignment"
	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/store"
	"github.com/tkellner/timeclock/internal/timer"
)

// Server wraps the tracking engine and exposes it as MCP tools.
type Server struct {
	store       store.Store
	engine      *timer.Engine
	assignments *assignment.Service
}

// NewServer creates the MCP server wrapper with all required dependencies.
func NewServer(s store.Store, engine *timer.Engine, assignments *assignment.Service) *Server {
	return &Server{
		store:       s,
		engine:      engine,
		assignments: assignments,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("timeclock", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.startTrackingTool())
	srv.AddTool(s.stopTrackingTool())
	srv.AddTool(s.activeSessionTool())
	srv.AddTool(s.listSessionsTool())
	srv.AddTool(s.switchOnTool())
	srv.AddTool(s.switchOffTool())
	srv.AddTool(s.taskTotalTool())
	srv.AddTool(s.acceptAssignmentTool())
	srv.AddTool(s.rejectAssignmentTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// timeclock_start_tracking
func (s *Server) startTrackingTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_start_tracking",
		mcp.WithDescription("Start a time-tracking session for an actor. Fails with a conflict when the actor already has a running session."),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Owner of the session")),
		mcp.WithString("task_id", mcp.Description("Optional task to attribute the time to")),
		mcp.WithString("project_id", mcp.Description("Optional project scope")),
		mcp.WithString("description", mcp.Description("Free-text description")),
	)
	return tool, s.handleStartTracking
}

func (s *Server) handleStartTracking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actor, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: actor"), nil
	}

	sess, err := s.engine.StartSession(ctx, timer.StartRequest{
		OwnerID:     actor,
		TaskID:      request.GetString("task_id", ""),
		ProjectID:   request.GetString("project_id", ""),
		Description: request.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start tracking: %v", err)), nil
	}
	return jsonResult(sess)
}

// timeclock_stop_tracking
func (s *Server) stopTrackingTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_stop_tracking",
		mcp.WithDescription("Stop an actor's running session and report the tracked duration in seconds."),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Owner of the session")),
		mcp.WithString("session_id", mcp.Description("Specific session to stop; defaults to the actor's running session")),
	)
	return tool, s.handleStopTracking
}

func (s *Server) handleStopTracking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actor, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: actor"), nil
	}

	sess, err := s.engine.StopSession(ctx, actor, request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stop tracking: %v", err)), nil
	}
	return jsonResult(sess)
}

// timeclock_active_session
func (s *Server) activeSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_active_session",
		mcp.WithDescription("Return the actor's currently running session, if any."),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Owner of the session")),
	)
	return tool, s.handleActiveSession
}

func (s *Server) handleActiveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actor, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: actor"), nil
	}

	sess, err := s.engine.GetActiveSession(ctx, actor)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query active session: %v", err)), nil
	}
	if sess == nil {
		return mcp.NewToolResultText(`{"active":false}`), nil
	}
	return jsonResult(map[string]any{"active": true, "session": sess})
}

// timeclock_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_list_sessions",
		mcp.WithDescription("List time sessions, newest first. Filter by actor, task, or status."),
		mcp.WithString("actor", mcp.Description("Filter by owner")),
		mcp.WithString("task_id", mcp.Description("Filter by task")),
		mcp.WithString("status", mcp.Description("Filter by status (running, stopped, approved, rejected)")),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.engine.ListSessions(ctx, store.SessionListFilter{
		OwnerID: request.GetString("actor", ""),
		TaskID:  request.GetString("task_id", ""),
		Status:  models.SessionStatus(request.GetString("status", "")),
		Limit:   50,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}
	return jsonResult(sessions)
}

// timeclock_switch_on
func (s *Server) switchOnTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_switch_on",
		mcp.WithDescription("Activate the per-task tracking switch. Independent of personal sessions."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task to switch on")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Actor the tracked interval is attributed to")),
	)
	return tool, s.handleSwitchOn
}

func (s *Server) handleSwitchOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: task_id"), nil
	}
	actor, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: actor"), nil
	}

	sess, err := s.engine.SwitchOn(ctx, taskID, actor)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to switch on: %v", err)), nil
	}
	return jsonResult(sess)
}

// timeclock_switch_off
func (s *Server) switchOffTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_switch_off",
		mcp.WithDescription("Deactivate the per-task tracking switch and credit the elapsed seconds to the task total."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task to switch off")),
	)
	return tool, s.handleSwitchOff
}

func (s *Server) handleSwitchOff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: task_id"), nil
	}

	duration, err := s.engine.SwitchOff(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to switch off: %v", err)), nil
	}
	return jsonResult(map[string]int64{"duration_added": duration})
}

// timeclock_task_total
func (s *Server) taskTotalTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_task_total",
		mcp.WithDescription("Return the accumulated tracked seconds for a task."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task id")),
	)
	return tool, s.handleTaskTotal
}

func (s *Server) handleTaskTotal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: task_id"), nil
	}

	total, err := s.engine.TaskTotal(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get task total: %v", err)), nil
	}
	return jsonResult(map[string]int64{"total_time_seconds": total})
}

// timeclock_accept_assignment
func (s *Server) acceptAssignmentTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_accept_assignment",
		mcp.WithDescription("Accept a pending task assignment as its assignee."),
		mcp.WithString("assignment_id", mcp.Required(), mcp.Description("Assignment id")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("The accepting assignee")),
	)
	return tool, s.handleAcceptAssignment
}

func (s *Server) handleAcceptAssignment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("assignment_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: assignment_id"), nil
	}
	actor, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: actor"), nil
	}

	a, err := s.assignments.Accept(ctx, id, actor)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to accept assignment: %v", err)), nil
	}
	return jsonResult(a)
}

// timeclock_reject_assignment
func (s *Server) rejectAssignmentTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("timeclock_reject_assignment",
		mcp.WithDescription("Reject a pending task assignment as its assignee. The task creator is notified."),
		mcp.WithString("assignment_id", mcp.Required(), mcp.Description("Assignment id")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("The rejecting assignee")),
	)
	return tool, s.handleRejectAssignment
}

func (s *Server) handleRejectAssignment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("assignment_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: assignment_id"), nil
	}
	actor, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: actor"), nil
	}

	a, err := s.assignments.Reject(ctx, id, actor)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reject assignment: %v", err)), nil
	}
	return jsonResult(a)
}
