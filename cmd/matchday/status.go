package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(configPath *string) *cobra.Command {
	var cleanupDays int

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show the job-status table, or one job's record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			if cleanupDays > 0 {
				removed, err := a.tracker.CleanupOldRecords(ctx, cleanupDays)
				if err != nil {
					return err
				}
				fmt.Printf("removed %d records\n", removed)
				return nil
			}

			if len(args) == 1 {
				r, ok := a.tracker.Get(ctx, args[0])
				if !ok {
					fmt.Printf("no record for job %s (processable)\n", args[0])
					return nil
				}
				fmt.Printf("job:           %s\n", r.JobID)
				fmt.Printf("status:        %s\n", r.Status)
				fmt.Printf("scheduled:     %s\n", formatTableTime(r.ScheduledAt))
				fmt.Printf("first attempt: %s\n", formatTableTime(r.FirstAttemptAt))
				fmt.Printf("last attempt:  %s\n", formatTableTime(r.LastAttemptAt))
				fmt.Printf("attempts:      %d\n", r.Attempts)
				if r.ErrorMessage != "" {
					fmt.Printf("error:         %s\n", r.ErrorMessage)
				}
				fmt.Printf("processable:   %v\n", a.tracker.IsProcessable(ctx, r.JobID))
				return nil
			}

			records := a.tracker.All(ctx)
			if len(records) == 0 {
				fmt.Println("status table is empty")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tSCHEDULED\tSTATUS\tATTEMPTS\tLAST ATTEMPT\tERROR")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.JobID, formatTableTime(r.ScheduledAt), r.Status,
					r.Attempts, formatTableTime(r.LastAttemptAt), r.ErrorMessage)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&cleanupDays, "cleanup", 0, "remove records scheduled more than N days ago")

	return cmd
}

func formatTableTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
