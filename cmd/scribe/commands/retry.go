package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/orchestrator"
	"scribe/internal/printer"
	"scribe/pkg/docboard"
)

var (
	retrySessionFile string
	retryPublish     bool
	retrySummary     bool
)

var retryCmd = &cobra.Command{
	Use:   "retry JOB_ID",
	Short: "Retry a failed or cancelled generation job",
	Long: `Retry a generation job that finished in a failed or cancelled state.

A retry runs as a new job continuing the original's lineage: the prior
job's document types are generated again and the retry counter carries
forward. The retry budget is fixed per lineage, so a lineage that has
exhausted it cannot be retried further.

Examples:
  scribe retry 4f8a2c1e-... --session session.yml
  scribe retry 4f8a2c1e-... --session session.yml --publish`,
	Args: cobra.ExactArgs(1),
	RunE: runRetry,
}

func init() {
	retryCmd.Flags().StringVarP(&retrySessionFile, "session", "s", "", "Path to the session transcript YAML (required)")
	retryCmd.Flags().BoolVar(&retryPublish, "publish", false, "Publish generated documents to the configured wiki")
	retryCmd.Flags().BoolVar(&retrySummary, "summary", false, "Include a short summary in each document")
	retryCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jobID := args[0]

	generateSessionFile = retrySessionFile
	req, err := loadGenerationRequest()
	if err != nil {
		return err
	}

	engine, board, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	printer.Step("Retrying job %s for session '%s'\n", jobID, req.Context.SessionID)

	result, err := engine.RetryGeneration(ctx, jobID, &req.Context, docboard.Options{
		Publish:        retryPublish,
		IncludeSummary: retrySummary,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrJobNotFound):
			return printer.Error(
				"job not found",
				fmt.Sprintf("No job with ID '%s' on instance '%s'.", jobID, resolvedInstanceName()),
				nil,
			)
		case errors.Is(err, orchestrator.ErrRetryExhausted):
			return printer.Error(
				"retry budget exhausted",
				fmt.Sprintf("Job %s has no retries left.", jobID),
				[]string{"Start a fresh generation:\n  scribe generate --session " + retrySessionFile},
			)
		default:
			if result != nil {
				reportResult(result)
			}
			return printer.Error(
				"retry did not complete",
				fmt.Sprintf("Error: %v", err),
				nil,
			)
		}
	}

	reportResult(result)
	return nil
}
