package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/output"
)

var taskProject string

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks and per-task time tracking",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAddRun(args[0])
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show task details and time total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskShowRun(args[0])
	},
}

var taskSwitchOnCmd = &cobra.Command{
	Use:   "switch-on <task-id>",
	Short: "Turn on the task's shared tracking switch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskSwitchOnRun(args[0])
	},
}

var taskSwitchOffCmd = &cobra.Command{
	Use:   "switch-off <task-id>",
	Short: "Turn off the task's shared tracking switch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskSwitchOffRun(args[0])
	},
}

var taskTotalCmd = &cobra.Command{
	Use:   "total <task-id>",
	Short: "Show the task's accumulated time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskTotalRun(args[0])
	},
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskProject, "project", "p", "", "Project id the task belongs to")
	taskListCmd.Flags().StringVarP(&taskProject, "project", "p", "", "Filter by project id")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskSwitchOnCmd)
	taskCmd.AddCommand(taskSwitchOffCmd)
	taskCmd.AddCommand(taskTotalCmd)
	rootCmd.AddCommand(taskCmd)
}

func taskAddRun(title string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	s, err := getStore()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would create task: %s", title)
		return nil
	}

	task := &models.Task{
		Title:     title,
		ProjectID: taskProject,
		CreatorID: actor,
	}
	if err := s.CreateTask(context.Background(), task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	ui.Success("Created task %s: %s", output.Cyan(task.ID), title)
	return nil
}

func taskListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	tasks, err := s.ListTasks(context.Background(), taskProject)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		ui.Info("No tasks. Use 'timeclock task add <title>' to create one.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Tracking", "Total", "Accepted"})
	for _, t := range tasks {
		tracking := ""
		if t.TimeTrackingActive {
			tracking = output.Yellow("on")
		}
		accepted := ""
		if t.Accepted {
			accepted = output.Green(t.AcceptedBy)
		}
		_ = table.Append([]string{
			output.Cyan(t.ID),
			t.Title,
			tracking,
			output.Duration(t.TotalTimeSeconds),
			accepted,
		})
	}
	_ = table.Render()
	return nil
}

func taskShowRun(taskID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	t, err := s.GetTask(context.Background(), taskID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Task:     %s\n", output.Cyan(t.ID))
	fmt.Fprintf(ui.Out, "Title:    %s\n", t.Title)
	if t.ProjectID != "" {
		fmt.Fprintf(ui.Out, "Project:  %s\n", t.ProjectID)
	}
	fmt.Fprintf(ui.Out, "Creator:  %s\n", t.CreatorID)
	fmt.Fprintf(ui.Out, "Total:    %s\n", output.Duration(t.TotalTimeSeconds))
	if t.TimeTrackingActive && t.LastSwitchOn != nil {
		fmt.Fprintf(ui.Out, "Tracking: %s since %s\n", output.Yellow("on"), t.LastSwitchOn.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(ui.Out, "Tracking: off\n")
	}
	if t.Accepted {
		fmt.Fprintf(ui.Out, "Accepted: by %s at %s\n", t.AcceptedBy, t.AcceptedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func taskSwitchOnRun(taskID string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	e, err := getEngine()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would switch on tracking for task: %s", taskID)
		return nil
	}

	sess, err := e.SwitchOn(context.Background(), taskID, actor)
	if err != nil {
		return err
	}

	ui.Success("Switched on tracking for task %s (session %s)", output.Cyan(taskID), sess.ID)
	return nil
}

func taskSwitchOffRun(taskID string) error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would switch off tracking for task: %s", taskID)
		return nil
	}

	dur, err := e.SwitchOff(context.Background(), taskID)
	if err != nil {
		return err
	}

	ui.Success("Switched off tracking for task %s after %s", output.Cyan(taskID), output.Duration(dur))
	return nil
}

func taskTotalRun(taskID string) error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	total, err := e.TaskTotal(context.Background(), taskID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s\n", output.Duration(total))
	return nil
}
