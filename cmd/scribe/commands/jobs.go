package commands

import (
	"context"

	"github.com/spf13/cobra"

	"scribe/internal/printer"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs SESSION_ID",
	Short: "List a session's generation jobs",
	Long: `List every generation job recorded for a session, newest first.

Examples:
  scribe jobs s1`,
	Args: cobra.ExactArgs(1),
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sessionID := args[0]

	engine, board, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	jobs, err := engine.GetJobsForSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		printer.Info("No jobs recorded for session '%s'.\n", sessionID)
		return nil
	}

	printer.Printf("%-36s  %-10s  %-7s  %-5s  %s\n", "JOB", "STATUS", "RETRIES", "DOCS", "CREATED")
	for _, job := range jobs {
		printer.Printf("%-36s  %-10s  %d/%-5d  %-5d  %s\n",
			job.ID, job.Status, job.RetryCount, job.MaxRetries,
			len(job.ProducedDocuments), formatMs(job.CreatedAtMs))
	}
	printer.Printf("\n%d job(s) for session '%s'\n", len(jobs), sessionID)

	return nil
}
