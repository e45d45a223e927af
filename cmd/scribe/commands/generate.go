package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"scribe/internal/orchestrator"
	"scribe/internal/printer"
	"scribe/pkg/docboard"
)

var (
	generateSessionFile string
	generatePublish     bool
	generateSummary     bool
	generateSkipTypes   []string
	generateOnlyTypes   []string
	generateRemote      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documents from a session transcript",
	Long: `Generate documents for a collaboration session.

The session transcript is read from a YAML file containing the session
ID, team ID, objective, outcome, participants, messages, and artifacts.
Document types are resolved from the team's persona configuration and
can be adjusted with --skip and --with.

Examples:
  # Generate everything the team's configuration enables
  scribe generate --session session.yml

  # Generate with summaries and publish to the wiki
  scribe generate --session session.yml --summary --publish

  # Skip the test plan this time
  scribe generate --session session.yml --skip testPlan

  # Add a type the configuration does not enable
  scribe generate --session session.yml --with runbook

  # Hand the request to a running scribed daemon instead
  scribe generate --session session.yml --remote`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateSessionFile, "session", "s", "", "Path to the session transcript YAML (required)")
	generateCmd.Flags().BoolVar(&generatePublish, "publish", false, "Publish generated documents to the configured wiki")
	generateCmd.Flags().BoolVar(&generateSummary, "summary", false, "Include a short summary in each document")
	generateCmd.Flags().StringArrayVar(&generateSkipTypes, "skip", nil, "Document type to skip (repeatable)")
	generateCmd.Flags().StringArrayVar(&generateOnlyTypes, "with", nil, "Extra document type to generate (repeatable)")
	generateCmd.Flags().BoolVar(&generateRemote, "remote", false, "Publish the request for a running scribed daemon instead of generating locally")
	generateCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	req, err := loadGenerationRequest()
	if err != nil {
		return err
	}

	if generateRemote {
		board, err := newBoardClient(ctx)
		if err != nil {
			return err
		}
		defer board.Close()

		if err := board.PublishGenerationRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to publish generation request: %w", err)
		}
		printer.Success("Generation request for session '%s' handed to the daemon\n", req.Context.SessionID)
		printer.Info("Follow progress with:\n  scribe watch %s\n", req.Context.SessionID)
		return nil
	}

	engine, board, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	printer.Step("Generating documents for session '%s' (team '%s')\n", req.Context.SessionID, req.Context.TeamID)

	result, err := engine.Generate(ctx, req)
	if err != nil {
		if result != nil {
			reportResult(result)
		}
		return printer.Error(
			"generation did not complete",
			fmt.Sprintf("Error: %v", err),
			nil,
		)
	}

	reportResult(result)
	if result.Job.Status == docboard.JobStatusFailed {
		suggestion := fmt.Sprintf("Retry the job:\n  scribe retry %s --session %s", result.Job.ID, generateSessionFile)
		if result.Job.RetryCount >= result.Job.MaxRetries {
			suggestion = "The retry budget for this lineage is spent."
		}
		return printer.Error(
			"all document types failed",
			fmt.Sprintf("Job %s finished without producing any documents.", result.Job.ID),
			[]string{suggestion},
		)
	}

	return nil
}

func loadGenerationRequest() (*docboard.GenerationRequest, error) {
	data, err := os.ReadFile(generateSessionFile)
	if err != nil {
		return nil, printer.Error(
			"failed to read session file",
			fmt.Sprintf("Error: %v", err),
			[]string{"Pass the transcript path:\n  scribe generate --session session.yml"},
		)
	}

	var sctx docboard.SessionContext
	if err := yaml.Unmarshal(data, &sctx); err != nil {
		return nil, printer.Error(
			"failed to parse session file",
			fmt.Sprintf("Error: %v", err),
			nil,
		)
	}
	if err := sctx.Validate(); err != nil {
		return nil, printer.Error(
			"invalid session transcript",
			fmt.Sprintf("Error: %v", err),
			nil,
		)
	}

	overrides := make(map[string]bool)
	for _, docType := range generateSkipTypes {
		overrides[docType] = false
	}
	for _, docType := range generateOnlyTypes {
		overrides[docType] = true
	}

	return &docboard.GenerationRequest{
		Context: sctx,
		Options: docboard.Options{
			TemplateOverrides: overrides,
			Publish:           generatePublish,
			IncludeSummary:    generateSummary,
		},
	}, nil
}

// reportResult prints the outcome of a generation run.
func reportResult(result *orchestrator.Result) {
	for _, doc := range result.Documents {
		if doc.URL != "" {
			printer.Success("%s: %s (%s)\n", doc.DocumentType, doc.Title, doc.URL)
		} else {
			printer.Success("%s: %s (document %s)\n", doc.DocumentType, doc.Title, doc.ID)
		}
	}
	for docType, err := range result.Failed {
		printer.Warning("%s failed: %v\n", docType, err)
	}
	printer.Info("Job %s finished with status '%s' (%d generated, %d failed)\n",
		result.Job.ID, result.Job.Status, len(result.Documents), len(result.Failed))
}
