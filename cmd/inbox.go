package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tkellner/timeclock/internal/output"
)

var inboxUnread bool

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return inboxListRun()
	},
}

var inboxListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notifications addressed to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		return inboxListRun()
	},
}

var inboxReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inboxReadRun(args[0])
	},
}

func init() {
	inboxCmd.PersistentFlags().BoolVarP(&inboxUnread, "unread", "u", false, "Only unread notifications")

	inboxCmd.AddCommand(inboxListCmd)
	inboxCmd.AddCommand(inboxReadCmd)
	rootCmd.AddCommand(inboxCmd)
}

func inboxListRun() error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	s, err := getStore()
	if err != nil {
		return err
	}

	events, err := s.ListNotifications(context.Background(), actor, inboxUnread)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		ui.Info("No notifications.")
		return nil
	}

	table := ui.Table([]string{"ID", "Type", "From", "Message", "When", ""})
	for _, n := range events {
		marker := output.Yellow("●")
		if n.Read {
			marker = ""
		}
		_ = table.Append([]string{
			output.Cyan(n.ID),
			string(n.Type),
			n.ActorID,
			n.Message,
			n.CreatedAt.Format("2006-01-02 15:04"),
			marker,
		})
	}
	_ = table.Render()
	return nil
}

func inboxReadRun(id string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	s, err := getStore()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would mark notification read: %s", id)
		return nil
	}

	if err := s.MarkNotificationRead(context.Background(), actor, id); err != nil {
		return err
	}

	ui.Success("Marked notification %s read", id)
	return nil
}
