package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/5unnykum4r/grip/internal/workflow"
)

func workflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage DAG-based multi-step workflows",
	}
	cmd.AddCommand(workflowListCmd())
	cmd.AddCommand(workflowShowCmd())
	cmd.AddCommand(workflowDeleteCmd())
	return cmd
}

func newWorkflowStore() *workflow.Store {
	store, err := workflow.NewStore(workflowStoreDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return store
}

func workflowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workflows",
		Run: func(cmd *cobra.Command, args []string) {
			names := newWorkflowStore().List()
			if len(names) == 0 {
				fmt.Println("No workflows found.")
				return
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "NAME\tSTEPS\tLAYERS\n")
			for _, name := range names {
				wf := newWorkflowStore().Load(name)
				if wf == nil {
					fmt.Fprintf(tw, "%s\t?\t?\n", name)
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\n", name, len(wf.Steps), len(wf.ExecutionOrder()))
			}
			tw.Flush()
		},
	}
}

func workflowShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a workflow definition as JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			wf := newWorkflowStore().Load(args[0])
			if wf == nil {
				fmt.Fprintf(os.Stderr, "Error: workflow %q not found\n", args[0])
				os.Exit(1)
			}
			data, _ := json.MarshalIndent(wf, "", "  ")
			fmt.Println(string(data))
		},
	}
}

func workflowDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !newWorkflowStore().Delete(args[0]) {
				fmt.Fprintf(os.Stderr, "Error: workflow %q not found\n", args[0])
				os.Exit(1)
			}
			fmt.Printf("Deleted workflow %s\n", args[0])
		},
	}
}
