package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/output"
	"github.com/tkellner/timeclock/internal/store"
)

var (
	assignListTask   string
	assignListStatus string
	assignListMine   bool
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Offer tasks and resolve assignment offers",
	Long: `Manage task assignment offers.

An assignment offers a task to a specific person; only that assignee can
accept or reject it, and once resolved it stays resolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return assignListRun()
	},
}

var assignCreateCmd = &cobra.Command{
	Use:   "create <task-id> <assignee-id>",
	Short: "Offer a task to an assignee",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assignCreateRun(args[0], args[1])
	},
}

var assignListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return assignListRun()
	},
}

var assignAcceptCmd = &cobra.Command{
	Use:   "accept <assignment-id>",
	Short: "Accept a pending assignment offered to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assignAcceptRun(args[0])
	},
}

var assignRejectCmd = &cobra.Command{
	Use:   "reject <assignment-id>",
	Short: "Reject a pending assignment offered to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assignRejectRun(args[0])
	},
}

func init() {
	assignListCmd.Flags().StringVarP(&assignListTask, "task", "t", "", "Filter by task id")
	assignListCmd.Flags().StringVar(&assignListStatus, "status", "", "Filter by status (pending, accepted, rejected)")
	assignListCmd.Flags().BoolVarP(&assignListMine, "mine", "m", false, "Only assignments offered to you")

	assignCmd.AddCommand(assignCreateCmd)
	assignCmd.AddCommand(assignListCmd)
	assignCmd.AddCommand(assignAcceptCmd)
	assignCmd.AddCommand(assignRejectCmd)
	rootCmd.AddCommand(assignCmd)
}

func assignCreateRun(taskID, assigneeID string) error {
	svc, err := getAssignments()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would offer task %s to %s", taskID, assigneeID)
		return nil
	}

	a, err := svc.Assign(context.Background(), taskID, assigneeID)
	if err != nil {
		return err
	}

	ui.Success("Offered task %s to %s (assignment %s)", output.Cyan(taskID), assigneeID, a.ID)
	return nil
}

func assignListRun() error {
	svc, err := getAssignments()
	if err != nil {
		return err
	}

	filter := store.AssignmentListFilter{
		TaskID: assignListTask,
		Status: models.AcceptanceStatus(assignListStatus),
	}
	if assignListMine {
		if filter.AssigneeID, err = requireActor(); err != nil {
			return err
		}
	}

	assignments, err := svc.List(context.Background(), filter)
	if err != nil {
		return err
	}

	if len(assignments) == 0 {
		ui.Info("No assignments found.")
		return nil
	}

	table := ui.Table([]string{"ID", "Task", "Assignee", "Status", "Created"})
	for _, a := range assignments {
		_ = table.Append([]string{
			output.Cyan(a.ID),
			a.TaskID,
			a.AssigneeID,
			output.StatusColor(string(a.AcceptanceStatus)),
			a.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func assignAcceptRun(assignmentID string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	svc, err := getAssignments()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would accept assignment: %s", assignmentID)
		return nil
	}

	a, err := svc.Accept(context.Background(), assignmentID, actor)
	if err != nil {
		return err
	}

	ui.Success("Accepted assignment %s for task %s", output.Cyan(a.ID), a.TaskID)
	return nil
}

func assignRejectRun(assignmentID string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	svc, err := getAssignments()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would reject assignment: %s", assignmentID)
		return nil
	}

	a, err := svc.Reject(context.Background(), assignmentID, actor)
	if err != nil {
		return err
	}

	ui.Success("Rejected assignment %s; the task creator has been notified", output.Cyan(a.ID))
	return nil
}
