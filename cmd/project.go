package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/output"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAddRun(args[0])
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(args[0])
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectShowCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectAddRun(name string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would create project: %s", name)
		return nil
	}

	p := &models.Project{Name: name}
	if err := s.CreateProject(context.Background(), p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	ui.Success("Created project %s: %s", output.Cyan(p.ID), name)
	return nil
}

func projectShowRun(projectID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Project:  %s\n", output.Cyan(p.ID))
	fmt.Fprintf(ui.Out, "Name:     %s\n", p.Name)
	fmt.Fprintln(ui.Out)

	tasks, err := s.ListTasks(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		ui.Info("No tasks in this project.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Total"})
	for _, t := range tasks {
		_ = table.Append([]string{
			output.Cyan(t.ID),
			t.Title,
			output.Duration(t.TotalTimeSeconds),
		})
	}
	_ = table.Render()
	return nil
}
