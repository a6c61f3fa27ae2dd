package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/5unnykum4r/grip/internal/cron"
)

func cronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Manage scheduled cron jobs",
	}
	cmd.AddCommand(cronListCmd())
	cmd.AddCommand(cronAddCmd())
	cmd.AddCommand(cronDeleteCmd())
	return cmd
}

func newCronService() *cron.Service {
	return cron.NewService(cronStorePath(), nil, nil, 0)
}

func cronListCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all cron jobs",
		Run: func(cmd *cobra.Command, args []string) {
			jobs := newCronService().ListJobs()
			if jsonOutput {
				data, _ := json.MarshalIndent(jobs, "", "  ")
				fmt.Println(string(data))
				return
			}
			if len(jobs) == 0 {
				fmt.Println("No cron jobs configured.")
				return
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tNAME\tENABLED\tSCHEDULE\tLAST RUN\n")
			for _, j := range jobs {
				lastRun := "never"
				if j.LastRun != nil {
					lastRun = *j.LastRun
				}
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\n", j.ID, j.Name, j.Enabled, j.Schedule, lastRun)
			}
			tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func cronAddCmd() *cobra.Command {
	var schedule, prompt, replyTo string
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a cron job",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job, err := newCronService().AddJob(args[0], schedule, prompt, replyTo)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf("Created job %s (%s)\n", job.ID, job.Schedule)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression, e.g. '0 9 * * *'")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt to run on schedule")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "session key to deliver output to, e.g. 'telegram:12345'")
	cmd.MarkFlagRequired("schedule")
	return cmd
}

func cronDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [jobId]",
		Short: "Delete a cron job",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !newCronService().RemoveJob(args[0]) {
				fmt.Fprintf(os.Stderr, "Error: no job found with id %s\n", args[0])
				os.Exit(1)
			}
			fmt.Printf("Deleted job %s\n", args[0])
		},
	}
}
