package orchestrator

import "errors"

// Sentinel errors for the generation pipeline. Callers distinguish them with
// errors.Is; everything wrapping them carries the specific context.
var (
	// ErrNoConfiguration means the team has no persona configured to
	// produce any document type. Generation fails before a job is created.
	ErrNoConfiguration = errors.New("no document-producing personas configured for team")

	// ErrTemplateNotFound means the catalog has no template for a
	// requested document type. Isolated per type; the job keeps going.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRender means content synthesis failed for one document type.
	// Isolated per type; the job keeps going.
	ErrRender = errors.New("render failed")

	// ErrPublish means the external wiki rejected a document. Isolated
	// per type; the job keeps going and the document stays unpublished.
	ErrPublish = errors.New("publish failed")

	// ErrJobNotFound means no job exists for the given ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrRetryExhausted means the job has already used every allowed
	// retry.
	ErrRetryExhausted = errors.New("retry limit exhausted")

	// ErrCancelled means the job was cancelled while processing.
	ErrCancelled = errors.New("job cancelled")
)
