package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scribe/internal/printer"
	"scribe/internal/registry"
	"scribe/internal/timespec"
	"scribe/pkg/docboard"
)

var (
	artifactsTeam    string
	artifactsSession string
	artifactsType    string
	artifactsTags    []string
	artifactsSince   string
	artifactsUntil   string
	artifactsJSON    bool
	artifactsStats   bool
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts [ARTIFACT_ID]",
	Short: "Inspect the artifact registry",
	Long: `Inspect registered document artifacts in list or get mode.

List Mode (no ARTIFACT_ID):
  Displays artifacts matching the filters as a table or JSON lines.
  Filters combine conjunctively.

Get Mode (with ARTIFACT_ID):
  Displays complete details of a single artifact as pretty-printed JSON.

Examples:
  # All artifacts on the instance
  scribe artifacts

  # A team's artifacts for one session
  scribe artifacts --team t1 --session s1

  # All published PRDs as JSON lines
  scribe artifacts --type prd --json

  # Everything registered in the last day
  scribe artifacts --since 24h

  # Registry statistics
  scribe artifacts --stats

  # Full details of one artifact
  scribe artifacts abc123-def456-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArtifacts,
}

func init() {
	artifactsCmd.Flags().StringVar(&artifactsTeam, "team", "", "Filter by team ID")
	artifactsCmd.Flags().StringVar(&artifactsSession, "session", "", "Filter by session ID")
	artifactsCmd.Flags().StringVar(&artifactsType, "type", "", "Filter by document type")
	artifactsCmd.Flags().StringArrayVar(&artifactsTags, "tag", nil, "Filter by tag, any match (repeatable)")
	artifactsCmd.Flags().StringVar(&artifactsSince, "since", "", "Only artifacts created after this time (duration like '24h' or RFC3339)")
	artifactsCmd.Flags().StringVar(&artifactsUntil, "until", "", "Only artifacts created before this time (duration like '1h' or RFC3339)")
	artifactsCmd.Flags().BoolVar(&artifactsJSON, "json", false, "Output JSON lines instead of a table")
	artifactsCmd.Flags().BoolVar(&artifactsStats, "stats", false, "Show registry statistics instead of entries")
	rootCmd.AddCommand(artifactsCmd)
}

func runArtifacts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	board, err := newBoardClient(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	reg := registry.New(board)

	// Get mode
	if len(args) > 0 {
		entry, err := reg.Get(ctx, args[0])
		if err != nil {
			if docboard.IsNotFound(err) {
				return printer.Error(
					"artifact not found",
					fmt.Sprintf("No artifact with ID '%s' on instance '%s'.", args[0], resolvedInstanceName()),
					[]string{"List artifacts:\n  scribe artifacts"},
				)
			}
			return err
		}
		pretty, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format artifact: %w", err)
		}
		printer.Println(string(pretty))
		return nil
	}

	if artifactsStats {
		stats, err := reg.Statistics(ctx, artifactsTeam)
		if err != nil {
			return err
		}
		pretty, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format statistics: %w", err)
		}
		printer.Println(string(pretty))
		return nil
	}

	sinceMS, untilMS, err := timespec.ParseRange(artifactsSince, artifactsUntil)
	if err != nil {
		return printer.Error(
			"invalid time range",
			fmt.Sprintf("Error: %v", err),
			[]string{"Use a duration like '24h' or an RFC3339 timestamp."},
		)
	}

	entries, err := reg.Search(ctx, registry.Filter{
		TeamID:          artifactsTeam,
		SessionID:       artifactsSession,
		DocumentType:    artifactsType,
		Tags:            artifactsTags,
		CreatedAfterMs:  sinceMS,
		CreatedBeforeMs: untilMS,
	})
	if err != nil {
		return err
	}

	if artifactsJSON {
		return registry.FormatJSONL(os.Stdout, entries)
	}

	registry.FormatTable(os.Stdout, entries)
	return nil
}
