package timespec

import (
	"testing"
	"time"
)

func TestParse_RFC3339(t *testing.T) {
	ms, err := Parse("2026-08-29T13:00:00Z")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC).UnixMilli()
	if ms != want {
		t.Errorf("Parse() = %d, want %d", ms, want)
	}
}

func TestParse_Duration(t *testing.T) {
	before := time.Now().Add(-time.Hour).UnixMilli()
	ms, err := Parse("1h")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	after := time.Now().Add(-time.Hour).UnixMilli()

	if ms < before || ms > after {
		t.Errorf("Parse(\"1h\") = %d, want between %d and %d", ms, before, after)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, spec := range []string{"", "yesterday", "13:00"} {
		if _, err := Parse(spec); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", spec)
		}
	}
}

func TestParseRange(t *testing.T) {
	sinceMS, untilMS, err := ParseRange("2h", "1h")
	if err != nil {
		t.Fatalf("ParseRange() error: %v", err)
	}
	if sinceMS == 0 || untilMS == 0 {
		t.Fatal("expected both bounds to be set")
	}
	if sinceMS >= untilMS {
		t.Errorf("since %d should precede until %d", sinceMS, untilMS)
	}

	// Empty bounds stay zero
	sinceMS, untilMS, err = ParseRange("", "")
	if err != nil || sinceMS != 0 || untilMS != 0 {
		t.Errorf("ParseRange(\"\", \"\") = %d, %d, %v", sinceMS, untilMS, err)
	}

	// Inverted range rejected
	if _, _, err := ParseRange("1h", "2h"); err == nil {
		t.Error("expected error for since after until")
	}
}
