package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/orchestrator"
	"scribe/internal/printer"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel JOB_ID",
	Short: "Request cancellation of a generation job",
	Long: `Request cooperative cancellation of a running or queued job.

The engine observes the request between document types and before a
rendered document is stored. Documents finished before the request are
kept; the in-flight one is discarded. Cancelling an already finished
job is a no-op.

Examples:
  scribe cancel 4f8a2c1e-...`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jobID := args[0]

	engine, board, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	if err := engine.CancelJob(ctx, jobID); err != nil {
		if errors.Is(err, orchestrator.ErrJobNotFound) {
			return printer.Error(
				"job not found",
				fmt.Sprintf("No job with ID '%s' on instance '%s'.", jobID, resolvedInstanceName()),
				nil,
			)
		}
		return err
	}

	printer.Success("Cancellation requested for job %s\n", jobID)
	return nil
}
