package docboard

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). Array fields are
// JSON-encoded into single hash fields. This provides a balance between
// queryability (individual fields) and flexibility (complex structures).

// JobToHash converts a GenerationJob struct to a Redis hash format.
// Array fields (document_types, produced_documents) are JSON-encoded.
func JobToHash(j *GenerationJob) (map[string]interface{}, error) {
	documentTypesJSON, err := json.Marshal(j.DocumentTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document_types: %w", err)
	}

	producedJSON, err := json.Marshal(j.ProducedDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal produced_documents: %w", err)
	}

	hash := map[string]interface{}{
		"id":                 j.ID,
		"session_id":         j.SessionID,
		"team_id":            j.TeamID,
		"status":             string(j.Status),
		"document_types":     string(documentTypesJSON),
		"produced_documents": string(producedJSON),
		"retry_count":        j.RetryCount,
		"max_retries":        j.MaxRetries,
		"last_error":         j.LastError,
		"created_at_ms":      j.CreatedAtMs,
		"started_at_ms":      j.StartedAtMs,
		"completed_at_ms":    j.CompletedAtMs,
	}

	return hash, nil
}

// HashToJob converts a Redis hash to a GenerationJob struct.
// JSON fields are decoded back to Go types.
func HashToJob(hash map[string]string) (*GenerationJob, error) {
	var documentTypes []string
	if documentTypesJSON := hash["document_types"]; documentTypesJSON != "" {
		if err := json.Unmarshal([]byte(documentTypesJSON), &documentTypes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document_types: %w", err)
		}
	}

	var produced []string
	if producedJSON := hash["produced_documents"]; producedJSON != "" {
		if err := json.Unmarshal([]byte(producedJSON), &produced); err != nil {
			return nil, fmt.Errorf("failed to unmarshal produced_documents: %w", err)
		}
	}

	// Ensure we have empty slices instead of nil for consistency
	if documentTypes == nil {
		documentTypes = []string{}
	}
	if produced == nil {
		produced = []string{}
	}

	retryCount, err := strconv.Atoi(hash["retry_count"])
	if err != nil {
		return nil, fmt.Errorf("invalid retry_count field: %w", err)
	}

	maxRetries, err := strconv.Atoi(hash["max_retries"])
	if err != nil {
		return nil, fmt.Errorf("invalid max_retries field: %w", err)
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	startedAtMs, _ := strconv.ParseInt(hash["started_at_ms"], 10, 64)
	completedAtMs, _ := strconv.ParseInt(hash["completed_at_ms"], 10, 64)

	job := &GenerationJob{
		ID:                hash["id"],
		SessionID:         hash["session_id"],
		TeamID:            hash["team_id"],
		Status:            JobStatus(hash["status"]),
		DocumentTypes:     documentTypes,
		ProducedDocuments: produced,
		RetryCount:        retryCount,
		MaxRetries:        maxRetries,
		LastError:         hash["last_error"],
		CreatedAtMs:       createdAtMs,
		StartedAtMs:       startedAtMs,
		CompletedAtMs:     completedAtMs,
	}

	return job, nil
}

// DocumentToHash converts a GeneratedDocument struct to a Redis hash format.
func DocumentToHash(d *GeneratedDocument) map[string]interface{} {
	return map[string]interface{}{
		"id":               d.ID,
		"job_id":           d.JobID,
		"session_id":       d.SessionID,
		"document_type":    d.DocumentType,
		"title":            d.Title,
		"content":          d.Content,
		"owner_persona_id": d.OwnerPersonaID,
		"owner_role":       d.OwnerRole,
		"summary":          d.Summary,
		"page_id":          d.PageID,
		"url":              d.URL,
		"created_at_ms":    d.CreatedAtMs,
	}
}

// HashToDocument converts a Redis hash to a GeneratedDocument struct.
func HashToDocument(hash map[string]string) (*GeneratedDocument, error) {
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	doc := &GeneratedDocument{
		ID:             hash["id"],
		JobID:          hash["job_id"],
		SessionID:      hash["session_id"],
		DocumentType:   hash["document_type"],
		Title:          hash["title"],
		Content:        hash["content"],
		OwnerPersonaID: hash["owner_persona_id"],
		OwnerRole:      hash["owner_role"],
		Summary:        hash["summary"],
		PageID:         hash["page_id"],
		URL:            hash["url"],
		CreatedAtMs:    createdAtMs,
	}

	return doc, nil
}

// ArtifactToHash converts an ArtifactEntry struct to a Redis hash format.
// The tags array is JSON-encoded.
func ArtifactToHash(a *ArtifactEntry) (map[string]interface{}, error) {
	tagsJSON, err := json.Marshal(a.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	hash := map[string]interface{}{
		"id":            a.ID,
		"team_id":       a.TeamID,
		"session_id":    a.SessionID,
		"document_id":   a.DocumentID,
		"document_type": a.DocumentType,
		"title":         a.Title,
		"external_url":  a.ExternalURL,
		"version":       a.Version,
		"tags":          string(tagsJSON),
		"created_at_ms": a.CreatedAtMs,
		"updated_at_ms": a.UpdatedAtMs,
	}

	return hash, nil
}

// HashToArtifact converts a Redis hash to an ArtifactEntry struct.
func HashToArtifact(hash map[string]string) (*ArtifactEntry, error) {
	version, err := strconv.Atoi(hash["version"])
	if err != nil {
		return nil, fmt.Errorf("invalid version field: %w", err)
	}

	var tags []string
	if tagsJSON := hash["tags"]; tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if tags == nil {
		tags = []string{}
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	updatedAtMs, _ := strconv.ParseInt(hash["updated_at_ms"], 10, 64)

	entry := &ArtifactEntry{
		ID:           hash["id"],
		TeamID:       hash["team_id"],
		SessionID:    hash["session_id"],
		DocumentID:   hash["document_id"],
		DocumentType: hash["document_type"],
		Title:        hash["title"],
		ExternalURL:  hash["external_url"],
		Version:      version,
		Tags:         tags,
		CreatedAtMs:  createdAtMs,
		UpdatedAtMs:  updatedAtMs,
	}

	return entry, nil
}
