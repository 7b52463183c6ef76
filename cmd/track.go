package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkellner/timeclock/internal/output"
	"github.com/tkellner/timeclock/internal/timer"
)

var (
	trackTask     string
	trackProject  string
	trackDesc     string
	trackBillable bool
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Start, stop, and inspect your personal timer",
	Long: `Track working time with a personal timer.

Each person has at most one running session at a time: starting while a
session is already running is rejected, stop it first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return trackStatusRun()
	},
}

var trackStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new time session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return trackStartRun()
	},
}

var trackStopCmd = &cobra.Command{
	Use:   "stop [session-id]",
	Short: "Stop the running session",
	Long: `Stop a time session and credit its duration to the task.

Without an argument, stops your currently running session. With a
session id, stops that specific session (it must be yours).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := ""
		if len(args) > 0 {
			sessionID = args[0]
		}
		return trackStopRun(sessionID)
	},
}

var trackStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your currently running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return trackStatusRun()
	},
}

func init() {
	trackStartCmd.Flags().StringVarP(&trackTask, "task", "t", "", "Task id to track against")
	trackStartCmd.Flags().StringVarP(&trackProject, "project", "p", "", "Project id")
	trackStartCmd.Flags().StringVarP(&trackDesc, "desc", "d", "", "Description of the work")
	trackStartCmd.Flags().BoolVar(&trackBillable, "billable", false, "Mark the session billable")

	trackCmd.AddCommand(trackStartCmd)
	trackCmd.AddCommand(trackStopCmd)
	trackCmd.AddCommand(trackStatusCmd)
	rootCmd.AddCommand(trackCmd)
}

func trackStartRun() error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	e, err := getEngine()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would start session for %s (task=%s)", actor, trackTask)
		return nil
	}

	sess, err := e.StartSession(context.Background(), timer.StartRequest{
		OwnerID:     actor,
		TaskID:      trackTask,
		ProjectID:   trackProject,
		Description: trackDesc,
		Billable:    trackBillable,
	})
	if err != nil {
		return err
	}

	ui.Success("Started session %s at %s", output.Cyan(sess.ID), sess.StartTime.Format("15:04:05"))
	if sess.TaskID != "" {
		ui.Info("Tracking against task %s", output.Cyan(sess.TaskID))
	}
	return nil
}

func trackStopRun(sessionID string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	e, err := getEngine()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would stop session for %s", actor)
		return nil
	}

	sess, err := e.StopSession(context.Background(), actor, sessionID)
	if err != nil {
		return err
	}

	ui.Success("Stopped session %s after %s", output.Cyan(sess.ID), output.Duration(sess.DurationSeconds))
	if sess.ClockSkewFlag {
		ui.Warning("Session end preceded its start; duration clamped to zero")
	}
	return nil
}

func trackStatusRun() error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	e, err := getEngine()
	if err != nil {
		return err
	}

	sess, err := e.GetActiveSession(context.Background(), actor)
	if err != nil {
		return err
	}
	if sess == nil {
		ui.Info("No running session. Use 'timeclock track start' to begin one.")
		return nil
	}

	fmt.Fprintf(ui.Out, "Session:  %s\n", output.Cyan(sess.ID))
	fmt.Fprintf(ui.Out, "Status:   %s\n", output.StatusColor(string(sess.Status)))
	fmt.Fprintf(ui.Out, "Started:  %s\n", sess.StartTime.Format("2006-01-02 15:04:05"))
	if sess.TaskID != "" {
		fmt.Fprintf(ui.Out, "Task:     %s\n", sess.TaskID)
	}
	if sess.Description != "" {
		fmt.Fprintf(ui.Out, "Desc:     %s\n", sess.Description)
	}
	return nil
}
