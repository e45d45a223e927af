package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"scribe/pkg/docboard"
)

// FormatTable writes artifact entries as a formatted table to the provided
// writer. The table includes columns: ID, VERSION, TYPE, TEAM, SESSION, AGE,
// and TITLE (truncated). Returns the number of entries formatted.
func FormatTable(w io.Writer, entries []*docboard.ArtifactEntry) int {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No artifacts found\n")
		return 0
	}

	// Print header row
	fmt.Fprintf(w, "%-10s %-5s %-12s %-12s %-14s %-8s %s\n",
		"ID", "VER", "TYPE", "TEAM", "SESSION", "AGE", "TITLE")
	fmt.Fprintf(w, "%-10s %-5s %-12s %-12s %-14s %-8s %s\n",
		"----------", "-----", "------------", "------------", "--------------", "--------", "----------------------------------------")

	// Print data rows
	for _, e := range entries {
		fmt.Fprintf(w, "%-10s %-5s %-12s %-12s %-14s %-8s %s\n",
			truncate(e.ID, 8),
			fmt.Sprintf("v%d", e.Version),
			truncate(e.DocumentType, 12),
			truncate(e.TeamID, 12),
			truncate(e.SessionID, 14),
			formatAge(e.UpdatedAtMs),
			truncate(e.Title, 40),
		)
	}

	// Print count
	countMsg := "artifact"
	if len(entries) != 1 {
		countMsg = "artifacts"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(entries), countMsg)

	return len(entries)
}

// FormatJSONL writes artifact entries as line-delimited JSON (JSONL) to the
// provided writer. Each entry is written as a single JSON object on its own
// line. This format is ideal for streaming and processing with tools like jq.
func FormatJSONL(w io.Writer, entries []*docboard.ArtifactEntry) error {
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal artifact to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// truncate shortens a string to max characters, with no ellipsis. IDs are
// UUIDs; the first 8 characters are enough to identify them interactively.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// formatAge renders a millisecond timestamp as a compact relative age.
func formatAge(ms int64) string {
	if ms == 0 {
		return "-"
	}

	age := time.Since(time.UnixMilli(ms))
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
