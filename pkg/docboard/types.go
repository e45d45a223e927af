package docboard

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerationJob tracks one invocation of the document generation pipeline.
// A job is created when generation is requested for a completed session and
// records which document types were attempted and which documents resulted.
type GenerationJob struct {
	ID                string    `json:"id"`                 // UUID - unique identifier for this job
	SessionID         string    `json:"session_id"`         // Collaboration session the job generates documents for
	TeamID            string    `json:"team_id"`            // Team whose persona configuration drives type selection
	Status            JobStatus `json:"status"`             // Current lifecycle state
	DocumentTypes     []string  `json:"document_types"`     // Document types resolved for this job, in configuration order
	ProducedDocuments []string  `json:"produced_documents"` // IDs of successfully generated documents, in completion order
	RetryCount        int       `json:"retry_count"`        // How many retries preceded this job (0 for a first attempt)
	MaxRetries        int       `json:"max_retries"`        // Retry ceiling; retry_count never exceeds this
	LastError         string    `json:"last_error,omitempty"`
	CreatedAtMs       int64     `json:"created_at_ms"`
	StartedAtMs       int64     `json:"started_at_ms,omitempty"`   // When the job entered processing
	CompletedAtMs     int64     `json:"completed_at_ms,omitempty"` // When the job reached a terminal state
}

// JobStatus defines the lifecycle state of a generation job.
// Jobs progress queued -> processing -> completed/failed/cancelled.
type JobStatus string

const (
	// JobStatusQueued indicates the job is waiting for a processing slot
	JobStatusQueued JobStatus = "queued"

	// JobStatusProcessing indicates the job is actively generating documents
	JobStatusProcessing JobStatus = "processing"

	// JobStatusCompleted indicates the job finished with at least one document
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed indicates every requested document type failed
	JobStatusFailed JobStatus = "failed"

	// JobStatusCancelled indicates the job was cancelled before finishing
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the status is absorbing. A job in a terminal
// state never transitions again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// GeneratedDocument is an immutable record of one successfully generated
// document. Re-generating the same document type for the same session
// produces a new document; existing documents are never mutated.
type GeneratedDocument struct {
	ID             string `json:"id"`              // UUID - unique identifier for this document
	JobID          string `json:"job_id"`          // Job that produced this document
	SessionID      string `json:"session_id"`      // Session the document was generated from
	DocumentType   string `json:"document_type"`   // e.g. "prd", "testPlan"
	Title          string `json:"title"`           // Rendered document title
	Content        string `json:"content"`         // Full markdown content
	OwnerPersonaID string `json:"owner_persona_id"` // Persona whose configuration owns this type
	OwnerRole      string `json:"owner_role"`
	Summary        string `json:"summary,omitempty"` // Optional short summary of the document
	PageID         string `json:"page_id,omitempty"` // External publish reference, set when published
	URL            string `json:"url,omitempty"`
	CreatedAtMs    int64  `json:"created_at_ms"`
}

// ArtifactEntry is the registry's record of a generated document's latest
// state. At most one current entry exists per (team, session, document type);
// re-registration increments Version and overwrites the mutable fields in
// place rather than creating a duplicate entry.
type ArtifactEntry struct {
	ID           string   `json:"id"`            // UUID - stable across re-registrations
	TeamID       string   `json:"team_id"`
	SessionID    string   `json:"session_id"`
	DocumentID   string   `json:"document_id"`   // Latest document for this (team, session, type)
	DocumentType string   `json:"document_type"`
	Title        string   `json:"title"`
	ExternalURL  string   `json:"external_url,omitempty"`
	Version      int      `json:"version"`       // Monotonic per (team, session, type), starts at 1
	Tags         []string `json:"tags"`
	CreatedAtMs  int64    `json:"created_at_ms"`
	UpdatedAtMs  int64    `json:"updated_at_ms"`
}

// EventType identifies the variant of a progress event.
type EventType string

const (
	// EventTypeGenerating announces that generation of a document type started
	EventTypeGenerating EventType = "generating"

	// EventTypeProgress reports partial progress within one document type
	EventTypeProgress EventType = "progress"

	// EventTypeComplete announces a successfully generated document
	EventTypeComplete EventType = "complete"

	// EventTypeError reports a per-type failure (the job keeps going)
	EventTypeError EventType = "error"
)

// Event is the notification payload fanned out to observers while a job
// runs. Events are transient: they are pushed to subscribers and the session
// transport, and retained only in a bounded rolling log for late joiners.
type Event struct {
	Type         EventType `json:"type"`
	SessionID    string    `json:"session_id"`
	JobID        string    `json:"job_id"`
	DocumentType string    `json:"document_type"`
	Persona      string    `json:"persona,omitempty"`   // generating: owning persona
	Progress     int       `json:"progress,omitempty"`  // generating/progress: percentage 0-100
	Message      string    `json:"message,omitempty"`   // progress: human-readable step description
	DocumentID   string    `json:"document_id,omitempty"` // complete: produced document
	URL          string    `json:"url,omitempty"`         // complete: external publish URL if any
	Error        string    `json:"error,omitempty"`       // error: failure description
	Retryable    bool      `json:"retryable,omitempty"`   // error: whether a retry is still possible
	TimestampMs  int64     `json:"timestamp_ms"`
}

// Validate checks if the GenerationJob has valid field values.
// Returns an error if any validation fails.
func (j *GenerationJob) Validate() error {
	if !isValidUUID(j.ID) {
		return fmt.Errorf("invalid job ID: not a valid UUID")
	}

	if j.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if j.TeamID == "" {
		return fmt.Errorf("team_id cannot be empty")
	}

	if err := j.Status.Validate(); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}

	if j.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", j.MaxRetries)
	}

	if j.RetryCount < 0 || j.RetryCount > j.MaxRetries {
		return fmt.Errorf("retry_count must be in [0, %d], got %d", j.MaxRetries, j.RetryCount)
	}

	return nil
}

// Validate checks if the JobStatus is a valid enum value.
func (s JobStatus) Validate() error {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted,
		JobStatusFailed, JobStatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown job status: %q", s)
	}
}

// Validate checks if the GeneratedDocument has valid field values.
func (d *GeneratedDocument) Validate() error {
	if !isValidUUID(d.ID) {
		return fmt.Errorf("invalid document ID: not a valid UUID")
	}

	if !isValidUUID(d.JobID) {
		return fmt.Errorf("invalid job ID: not a valid UUID")
	}

	if d.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if d.DocumentType == "" {
		return fmt.Errorf("document_type cannot be empty")
	}

	if d.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	return nil
}

// Validate checks if the ArtifactEntry has valid field values.
func (a *ArtifactEntry) Validate() error {
	if !isValidUUID(a.ID) {
		return fmt.Errorf("invalid artifact ID: not a valid UUID")
	}

	if a.TeamID == "" {
		return fmt.Errorf("team_id cannot be empty")
	}

	if a.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if a.DocumentID == "" {
		return fmt.Errorf("document_id cannot be empty")
	}

	if a.DocumentType == "" {
		return fmt.Errorf("document_type cannot be empty")
	}

	if a.Version < 1 {
		return fmt.Errorf("invalid version: must be >= 1, got %d", a.Version)
	}

	return nil
}

// Validate checks if the Event has valid field values.
func (e *Event) Validate() error {
	if err := e.Type.Validate(); err != nil {
		return fmt.Errorf("invalid event type: %w", err)
	}

	if e.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if e.JobID == "" {
		return fmt.Errorf("job_id cannot be empty")
	}

	return nil
}

// Validate checks if the EventType is a valid enum value.
func (t EventType) Validate() error {
	switch t {
	case EventTypeGenerating, EventTypeProgress, EventTypeComplete, EventTypeError:
		return nil
	default:
		return fmt.Errorf("unknown event type: %q", t)
	}
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
