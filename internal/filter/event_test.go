package filter

import (
	"testing"

	"scribe/pkg/docboard"
)

func testEvent() *docboard.Event {
	return &docboard.Event{
		Type:         docboard.EventTypeProgress,
		SessionID:    "s1",
		JobID:        "job-1",
		DocumentType: "testPlan",
		TimestampMs:  5000,
	}
}

func TestCriteria_Matches(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"empty criteria matches all", Criteria{}, true},
		{"since before event", Criteria{SinceTimestampMs: 4000}, true},
		{"since after event", Criteria{SinceTimestampMs: 6000}, false},
		{"until after event", Criteria{UntilTimestampMs: 6000}, true},
		{"until before event", Criteria{UntilTimestampMs: 4000}, false},
		{"type glob exact", Criteria{TypeGlob: "testPlan"}, true},
		{"type glob wildcard", Criteria{TypeGlob: "test*"}, true},
		{"type glob mismatch", Criteria{TypeGlob: "prd"}, false},
		{"job match", Criteria{JobID: "job-1"}, true},
		{"job mismatch", Criteria{JobID: "job-2"}, false},
		{"errors only rejects progress", Criteria{ErrorsOnly: true}, false},
		{"combined all match", Criteria{SinceTimestampMs: 4000, TypeGlob: "test*", JobID: "job-1"}, true},
		{"combined one mismatch", Criteria{SinceTimestampMs: 4000, TypeGlob: "prd", JobID: "job-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.Matches(testEvent()); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCriteria_ErrorsOnly(t *testing.T) {
	event := testEvent()
	event.Type = docboard.EventTypeError

	criteria := Criteria{ErrorsOnly: true}
	if !criteria.Matches(event) {
		t.Error("error event should pass ErrorsOnly filter")
	}
}

func TestCriteria_HasFilters(t *testing.T) {
	if (&Criteria{}).HasFilters() {
		t.Error("empty criteria should report no filters")
	}
	if !(&Criteria{TypeGlob: "prd"}).HasFilters() {
		t.Error("type glob should count as a filter")
	}
	if !(&Criteria{ErrorsOnly: true}).HasFilters() {
		t.Error("errors-only should count as a filter")
	}
}
