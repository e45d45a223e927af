package docboard

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// TestJobRoundTrip tests job hash serialization round-trips all fields
func TestJobRoundTrip(t *testing.T) {
	job := &GenerationJob{
		ID:                uuid.New().String(),
		SessionID:         "s1",
		TeamID:            "t1",
		Status:            JobStatusProcessing,
		DocumentTypes:     []string{"prd", "testPlan"},
		ProducedDocuments: []string{uuid.New().String()},
		RetryCount:        1,
		MaxRetries:        3,
		LastError:         "template not found: runbook",
		CreatedAtMs:       1700000000000,
		StartedAtMs:       1700000000100,
	}

	hash, err := JobToHash(job)
	if err != nil {
		t.Fatalf("JobToHash() failed: %v", err)
	}

	restored, err := HashToJob(stringify(hash))
	if err != nil {
		t.Fatalf("HashToJob() failed: %v", err)
	}

	if restored.ID != job.ID || restored.Status != job.Status {
		t.Errorf("identity fields did not round-trip: %+v", restored)
	}
	if len(restored.DocumentTypes) != 2 || restored.DocumentTypes[0] != "prd" {
		t.Errorf("document_types did not round-trip: %v", restored.DocumentTypes)
	}
	if restored.RetryCount != 1 || restored.MaxRetries != 3 {
		t.Errorf("retry fields did not round-trip: %+v", restored)
	}
	if restored.LastError != job.LastError {
		t.Errorf("last_error did not round-trip: %q", restored.LastError)
	}
	if restored.StartedAtMs != job.StartedAtMs {
		t.Errorf("started_at_ms did not round-trip: %d", restored.StartedAtMs)
	}
}

// TestHashToJob_EmptyArrays verifies nil arrays come back as empty slices
func TestHashToJob_EmptyArrays(t *testing.T) {
	job := &GenerationJob{
		ID:         uuid.New().String(),
		SessionID:  "s1",
		TeamID:     "t1",
		Status:     JobStatusQueued,
		MaxRetries: 3,
	}

	hash, err := JobToHash(job)
	if err != nil {
		t.Fatalf("JobToHash() failed: %v", err)
	}

	restored, err := HashToJob(stringify(hash))
	if err != nil {
		t.Fatalf("HashToJob() failed: %v", err)
	}

	if restored.DocumentTypes == nil {
		t.Error("document_types should be an empty slice, not nil")
	}
	if restored.ProducedDocuments == nil {
		t.Error("produced_documents should be an empty slice, not nil")
	}
}

// TestArtifactRoundTrip tests artifact hash serialization
func TestArtifactRoundTrip(t *testing.T) {
	entry := &ArtifactEntry{
		ID:           uuid.New().String(),
		TeamID:       "t1",
		SessionID:    "s1",
		DocumentID:   uuid.New().String(),
		DocumentType: "prd",
		Title:        "Product Requirements",
		ExternalURL:  "https://wiki.example.com/pages/42",
		Version:      2,
		Tags:         []string{"generated", "prd"},
		CreatedAtMs:  1700000000000,
		UpdatedAtMs:  1700000001000,
	}

	hash, err := ArtifactToHash(entry)
	if err != nil {
		t.Fatalf("ArtifactToHash() failed: %v", err)
	}

	restored, err := HashToArtifact(stringify(hash))
	if err != nil {
		t.Fatalf("HashToArtifact() failed: %v", err)
	}

	if restored.Version != 2 {
		t.Errorf("version did not round-trip: %d", restored.Version)
	}
	if len(restored.Tags) != 2 || restored.Tags[1] != "prd" {
		t.Errorf("tags did not round-trip: %v", restored.Tags)
	}
	if restored.ExternalURL != entry.ExternalURL {
		t.Errorf("external_url did not round-trip: %q", restored.ExternalURL)
	}
	if restored.UpdatedAtMs != entry.UpdatedAtMs {
		t.Errorf("updated_at_ms did not round-trip: %d", restored.UpdatedAtMs)
	}
}

// TestHashToArtifact_InvalidVersion tests rejection of malformed hashes
func TestHashToArtifact_InvalidVersion(t *testing.T) {
	hash := map[string]string{
		"id":      uuid.New().String(),
		"version": "not-a-number",
	}

	if _, err := HashToArtifact(hash); err == nil {
		t.Error("expected error for invalid version field, got nil")
	}
}

// TestDocumentRoundTrip tests document hash serialization
func TestDocumentRoundTrip(t *testing.T) {
	doc := &GeneratedDocument{
		ID:             uuid.New().String(),
		JobID:          uuid.New().String(),
		SessionID:      "s1",
		DocumentType:   "testPlan",
		Title:          "Test Plan",
		Content:        "# Test Plan\n\n## Coverage\n",
		OwnerPersonaID: "qa-lead",
		OwnerRole:      "qa",
		Summary:        "Covers coverage.",
		PageID:         "42",
		URL:            "https://wiki.example.com/pages/42",
		CreatedAtMs:    1700000000000,
	}

	restored, err := HashToDocument(stringify(DocumentToHash(doc)))
	if err != nil {
		t.Fatalf("HashToDocument() failed: %v", err)
	}

	if restored.Content != doc.Content {
		t.Errorf("content did not round-trip")
	}
	if restored.OwnerPersonaID != doc.OwnerPersonaID || restored.OwnerRole != doc.OwnerRole {
		t.Errorf("owner fields did not round-trip: %+v", restored)
	}
	if restored.PageID != doc.PageID || restored.URL != doc.URL {
		t.Errorf("publish fields did not round-trip: %+v", restored)
	}
}

// stringify converts a write-side hash (string -> interface{}) into the
// string -> string form HGetAll returns.
func stringify(hash map[string]interface{}) map[string]string {
	out := make(map[string]string, len(hash))
	for k, v := range hash {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
