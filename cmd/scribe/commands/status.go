package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/orchestrator"
	"scribe/internal/printer"
	"scribe/pkg/docboard"
)

var statusCmd = &cobra.Command{
	Use:   "status JOB_ID",
	Short: "Show a generation job's state",
	Long: `Show the current state of a generation job: its lifecycle status,
resolved document types, produced documents, and retry budget.

Examples:
  scribe status 4f8a2c1e-...`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jobID := args[0]

	engine, board, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	job, err := engine.GetJobStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, orchestrator.ErrJobNotFound) {
			return printer.Error(
				"job not found",
				fmt.Sprintf("No job with ID '%s' on instance '%s'.", jobID, resolvedInstanceName()),
				[]string{"List a session's jobs:\n  scribe jobs SESSION_ID"},
			)
		}
		return err
	}

	printJob(job)
	return nil
}

func printJob(job *docboard.GenerationJob) {
	printer.Printf("Job:            %s\n", job.ID)
	printer.Printf("Session:        %s\n", job.SessionID)
	printer.Printf("Team:           %s\n", job.TeamID)
	printer.Printf("Status:         %s\n", job.Status)
	printer.Printf("Document types: %v\n", job.DocumentTypes)
	printer.Printf("Produced:       %d of %d\n", len(job.ProducedDocuments), len(job.DocumentTypes))
	printer.Printf("Retries:        %d of %d used\n", job.RetryCount, job.MaxRetries)
	printer.Printf("Created:        %s\n", formatMs(job.CreatedAtMs))
	if job.StartedAtMs > 0 {
		printer.Printf("Started:        %s\n", formatMs(job.StartedAtMs))
	}
	if job.CompletedAtMs > 0 {
		printer.Printf("Completed:      %s\n", formatMs(job.CompletedAtMs))
	}
	if job.LastError != "" {
		printer.Printf("Last error:     %s\n", job.LastError)
	}
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
