package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/5unnykum4r/grip/internal/heartbeat"
)

func heartbeatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Inspect heartbeat configuration",
	}
	cmd.AddCommand(heartbeatStatusCmd())
	return cmd
}

func heartbeatStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether workspace/HEARTBEAT.md has content that would trigger a run",
		Run: func(cmd *cobra.Command, args []string) {
			content, ok := heartbeat.CheckFile(workspaceFlag)
			if !ok {
				fmt.Println("HEARTBEAT.md is missing or effectively empty; no run would be triggered.")
				return
			}
			fmt.Printf("HEARTBEAT.md has content (%d bytes); a run would be triggered on the next tick.\n", len(content))
		},
	}
}
