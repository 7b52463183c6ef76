package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tkellner/timeclock/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients drive the tracker natively. Configure with:

  {
    "mcpServers": {
      "timeclock": { "command": "timeclock", "args": ["mcp"] }
    }
  }

Available tools: timeclock_start_tracking, timeclock_stop_tracking,
timeclock_active_session, timeclock_list_sessions, timeclock_switch_on,
timeclock_switch_off, timeclock_task_total, timeclock_accept_assignment,
timeclock_reject_assignment`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		e, err := getEngine()
		if err != nil {
			return err
		}
		svc, err := getAssignments()
		if err != nil {
			return err
		}

		srv := mcp.NewServer(s, e, svc)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
