package docboard

import (
	"testing"

	"github.com/google/uuid"
)

// TestJobValidate_Valid tests that valid jobs pass validation
func TestJobValidate_Valid(t *testing.T) {
	job := &GenerationJob{
		ID:            uuid.New().String(),
		SessionID:     "s1",
		TeamID:        "t1",
		Status:        JobStatusQueued,
		DocumentTypes: []string{"prd", "testPlan"},
		MaxRetries:    3,
	}

	if err := job.Validate(); err != nil {
		t.Errorf("valid job failed validation: %v", err)
	}
}

// TestJobValidate_InvalidID tests that a non-UUID job ID fails validation
func TestJobValidate_InvalidID(t *testing.T) {
	job := &GenerationJob{
		ID:         "not-a-uuid",
		SessionID:  "s1",
		TeamID:     "t1",
		Status:     JobStatusQueued,
		MaxRetries: 3,
	}

	if err := job.Validate(); err == nil {
		t.Error("expected validation to fail for invalid ID, but it passed")
	}
}

// TestJobValidate_MissingSession tests that an empty session ID fails validation
func TestJobValidate_MissingSession(t *testing.T) {
	job := &GenerationJob{
		ID:         uuid.New().String(),
		TeamID:     "t1",
		Status:     JobStatusQueued,
		MaxRetries: 3,
	}

	if err := job.Validate(); err == nil {
		t.Error("expected validation to fail for empty session_id, but it passed")
	}
}

// TestJobValidate_RetryCountBound tests the retry_count <= max_retries invariant
func TestJobValidate_RetryCountBound(t *testing.T) {
	job := &GenerationJob{
		ID:         uuid.New().String(),
		SessionID:  "s1",
		TeamID:     "t1",
		Status:     JobStatusQueued,
		RetryCount: 4,
		MaxRetries: 3,
	}

	if err := job.Validate(); err == nil {
		t.Error("expected validation to fail for retry_count > max_retries, but it passed")
	}

	job.RetryCount = 3
	if err := job.Validate(); err != nil {
		t.Errorf("job with retry_count == max_retries failed validation: %v", err)
	}
}

// TestJobStatusValidate tests status enum validation
func TestJobStatusValidate(t *testing.T) {
	tests := []struct {
		name    string
		status  JobStatus
		wantErr bool
	}{
		{"queued is valid", JobStatusQueued, false},
		{"processing is valid", JobStatusProcessing, false},
		{"completed is valid", JobStatusCompleted, false},
		{"failed is valid", JobStatusFailed, false},
		{"cancelled is valid", JobStatusCancelled, false},
		{"unknown is invalid", JobStatus("paused"), true},
		{"empty is invalid", JobStatus(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.status.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestJobStatusIsTerminal tests terminal status detection
func TestJobStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{JobStatusQueued, false},
		{JobStatusProcessing, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
		{JobStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, expected %v", got, tt.terminal)
			}
		})
	}
}

// TestDocumentValidate tests generated document validation
func TestDocumentValidate(t *testing.T) {
	doc := &GeneratedDocument{
		ID:           uuid.New().String(),
		JobID:        uuid.New().String(),
		SessionID:    "s1",
		DocumentType: "prd",
		Title:        "Product Requirements",
		Content:      "# Product Requirements\n",
	}

	if err := doc.Validate(); err != nil {
		t.Errorf("valid document failed validation: %v", err)
	}

	doc.Title = ""
	if err := doc.Validate(); err == nil {
		t.Error("expected validation to fail for empty title, but it passed")
	}
}

// TestArtifactValidate tests artifact entry validation
func TestArtifactValidate(t *testing.T) {
	entry := &ArtifactEntry{
		ID:           uuid.New().String(),
		TeamID:       "t1",
		SessionID:    "s1",
		DocumentID:   uuid.New().String(),
		DocumentType: "prd",
		Title:        "Product Requirements",
		Version:      1,
		Tags:         []string{"generated"},
	}

	if err := entry.Validate(); err != nil {
		t.Errorf("valid artifact failed validation: %v", err)
	}

	entry.Version = 0
	if err := entry.Validate(); err == nil {
		t.Error("expected validation to fail for version 0, but it passed")
	}
}

// TestEventValidate tests event validation
func TestEventValidate(t *testing.T) {
	event := &Event{
		Type:         EventTypeGenerating,
		SessionID:    "s1",
		JobID:        uuid.New().String(),
		DocumentType: "prd",
	}

	if err := event.Validate(); err != nil {
		t.Errorf("valid event failed validation: %v", err)
	}

	event.Type = EventType("started")
	if err := event.Validate(); err == nil {
		t.Error("expected validation to fail for unknown event type, but it passed")
	}
}

// TestSessionMessageHasTag tests message tag lookup
func TestSessionMessageHasTag(t *testing.T) {
	msg := &SessionMessage{
		Content: "We will ship the v2 API first",
		Tags:    []string{"decision", "api"},
	}

	if !msg.HasTag("decision") {
		t.Error("expected HasTag(\"decision\") to be true")
	}
	if msg.HasTag("question") {
		t.Error("expected HasTag(\"question\") to be false")
	}
}

// TestSessionContextValidate tests session context validation
func TestSessionContextValidate(t *testing.T) {
	sctx := &SessionContext{SessionID: "s1", TeamID: "t1"}
	if err := sctx.Validate(); err != nil {
		t.Errorf("valid session context failed validation: %v", err)
	}

	sctx.TeamID = ""
	if err := sctx.Validate(); err == nil {
		t.Error("expected validation to fail for empty team_id, but it passed")
	}
}
