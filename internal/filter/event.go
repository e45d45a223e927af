package filter

import (
	"path/filepath"

	"scribe/pkg/docboard"
)

// Criteria defines filtering criteria for session events.
// All filters are ANDed together - an event must match ALL criteria to pass.
type Criteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	TypeGlob         string // Glob pattern for document type, empty = no filter
	JobID            string // Exact match for job ID, empty = no filter
	ErrorsOnly       bool   // Only error events pass
}

// Matches returns true if the event matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(event *docboard.Event) bool {
	if c.SinceTimestampMs > 0 && event.TimestampMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && event.TimestampMs > c.UntilTimestampMs {
		return false
	}

	if c.TypeGlob != "" {
		matched, err := filepath.Match(c.TypeGlob, event.DocumentType)
		if err != nil || !matched {
			return false
		}
	}

	if c.JobID != "" && event.JobID != c.JobID {
		return false
	}

	if c.ErrorsOnly && event.Type != docboard.EventTypeError {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.TypeGlob != "" ||
		c.JobID != "" ||
		c.ErrorsOnly
}
