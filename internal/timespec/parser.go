// Package timespec parses the --since/--until time specifications used by
// artifact registry queries.
package timespec

import (
	"fmt"
	"time"
)

// Parse parses a time specification into a Unix timestamp (milliseconds).
// Two formats are accepted:
//   - RFC3339 timestamps: "2026-08-29T13:00:00Z"
//   - Go durations, taken relative to now: "1h" means "1 hour ago"
func Parse(spec string) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '1h30m' or RFC3339 like '2026-08-29T13:00:00Z')", spec)
}

// ParseRange parses --since and --until values into a millisecond time
// range. A zero value means "no bound" for that end. When both bounds are
// given, since must precede until.
func ParseRange(since, until string) (int64, int64, error) {
	var sinceMS, untilMS int64
	var err error

	if since != "" {
		if sinceMS, err = Parse(since); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if until != "" {
		if untilMS, err = Parse(until); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMS > 0 && untilMS > 0 && sinceMS >= untilMS {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}

	return sinceMS, untilMS, nil
}
