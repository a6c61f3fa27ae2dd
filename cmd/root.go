// Package cmd implements the grip CLI: cron, workflow, and heartbeat
// management commands operating directly on workspace state.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var workspaceFlag string

// Execute runs the root command.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grip",
		Short: "grip runs scheduled, DAG-workflow, and heartbeat agent turns",
	}
	cmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", defaultWorkspace(), "workspace directory")
	cmd.AddCommand(cronCmd())
	cmd.AddCommand(workflowCmd())
	cmd.AddCommand(heartbeatCmd())
	cmd.AddCommand(sendCmd())
	return cmd
}

func defaultWorkspace() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".grip", "workspace")
}

func cronStorePath() string {
	return filepath.Join(workspaceFlag, "cron", "jobs.json")
}

func workflowStoreDir() string {
	return filepath.Join(workspaceFlag, "workflows")
}
