package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/filter"
	"scribe/internal/printer"
	"scribe/pkg/docboard"
)

var (
	watchReplay     int
	watchTypeGlob   string
	watchJobID      string
	watchErrorsOnly bool
)

var watchCmd = &cobra.Command{
	Use:   "watch SESSION_ID",
	Short: "Stream a session's generation events",
	Long: `Stream generation progress events for a session in real time.

With --replay N, the last N events from the session's rolling log are
printed before live streaming begins. Filters apply to both replayed and
live events. Press Ctrl-C to stop.

Examples:
  # Live events only
  scribe watch s1

  # Catch up on the last 20 events first
  scribe watch s1 --replay 20

  # Only test plan events
  scribe watch s1 --type 'test*'

  # Only failures for one job
  scribe watch s1 --job 4f8a2c1e-... --errors`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchReplay, "replay", 0, "Number of logged events to print before streaming")
	watchCmd.Flags().StringVar(&watchTypeGlob, "type", "", "Only events for document types matching this glob")
	watchCmd.Flags().StringVar(&watchJobID, "job", "", "Only events for this job")
	watchCmd.Flags().BoolVar(&watchErrorsOnly, "errors", false, "Only error events")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessionID := args[0]

	board, err := newBoardClient(ctx)
	if err != nil {
		return err
	}
	defer board.Close()

	criteria := filter.Criteria{
		TypeGlob:   watchTypeGlob,
		JobID:      watchJobID,
		ErrorsOnly: watchErrorsOnly,
	}

	if watchReplay > 0 {
		events, err := board.RecentEvents(ctx, sessionID, watchReplay)
		if err != nil {
			return err
		}
		for _, event := range events {
			if criteria.Matches(event) {
				printEvent(event)
			}
		}
	}

	subscription, err := board.SubscribeSessionEvents(ctx, sessionID)
	if err != nil {
		return err
	}
	defer subscription.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	printer.Step("Watching session '%s' (Ctrl-C to stop)\n", sessionID)

	for {
		select {
		case <-sigCh:
			printer.Info("\nStopped.\n")
			return nil

		case event, ok := <-subscription.Events():
			if !ok {
				return nil
			}
			if criteria.Matches(event) {
				printEvent(event)
			}

		case err, ok := <-subscription.Errors():
			if !ok {
				return nil
			}
			printer.Warning("subscription error: %v\n", err)
		}
	}
}

func printEvent(event *docboard.Event) {
	switch event.Type {
	case docboard.EventTypeGenerating:
		printer.Step("[%s] %s\n", event.DocumentType, event.Message)
	case docboard.EventTypeProgress:
		printer.Info("[%s] %d%% %s\n", event.DocumentType, event.Progress, event.Message)
	case docboard.EventTypeComplete:
		if event.URL != "" {
			printer.Success("[%s] %s -> %s\n", event.DocumentType, event.Message, event.URL)
		} else {
			printer.Success("[%s] %s\n", event.DocumentType, event.Message)
		}
	case docboard.EventTypeError:
		if event.Retryable {
			printer.Warning("[%s] %s (retryable)\n", event.DocumentType, event.Error)
		} else {
			printer.Warning("[%s] %s\n", event.DocumentType, event.Error)
		}
	}
}
