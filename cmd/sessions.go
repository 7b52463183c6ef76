package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/output"
	"github.com/tkellner/timeclock/internal/store"
)

var (
	sessionsTask   string
	sessionsStatus string
	sessionsAll    bool
	sessionsLimit  int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and manage time sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionsListRun()
	},
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded time sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionsListRun()
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a closed session and rebalance its task total",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionsDeleteRun(args[0])
	},
}

func init() {
	sessionsListCmd.Flags().StringVarP(&sessionsTask, "task", "t", "", "Filter by task id")
	sessionsListCmd.Flags().StringVar(&sessionsStatus, "status", "", "Filter by status (running, stopped, approved, rejected)")
	sessionsListCmd.Flags().BoolVarP(&sessionsAll, "all", "a", false, "List sessions of all owners, not just yours")
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 0, "Maximum sessions to show (default from config)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func sessionsListRun() error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	filter := store.SessionListFilter{
		TaskID: sessionsTask,
		Status: models.SessionStatus(sessionsStatus),
		Limit:  sessionsLimit,
	}
	if filter.Limit == 0 {
		filter.Limit = viper.GetInt("sessions.default_limit")
	}
	if !sessionsAll {
		if filter.OwnerID, err = requireActor(); err != nil {
			return err
		}
	}

	sessions, err := e.ListSessions(context.Background(), filter)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.Info("No sessions found.")
		return nil
	}

	table := ui.Table([]string{"ID", "Owner", "Task", "Status", "Started", "Duration"})
	for _, s := range sessions {
		dur := ""
		if s.Status.Closed() {
			dur = output.Duration(s.DurationSeconds)
		}
		_ = table.Append([]string{
			output.Cyan(s.ID),
			s.OwnerID,
			s.TaskID,
			output.StatusColor(string(s.Status)),
			s.StartTime.Format("2006-01-02 15:04"),
			dur,
		})
	}
	_ = table.Render()
	return nil
}

func sessionsDeleteRun(sessionID string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	e, err := getEngine()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete session: %s", sessionID)
		return nil
	}

	if err := e.DeleteSession(context.Background(), actor, sessionID); err != nil {
		return err
	}

	ui.Success("Deleted session %s", sessionID)
	return nil
}
