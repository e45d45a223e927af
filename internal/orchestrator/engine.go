package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe/internal/notify"
	"scribe/internal/registry"
	"scribe/pkg/docboard"
)

// DefaultMaxConcurrentJobs bounds how many generation jobs run at once
// when no explicit limit is configured.
const DefaultMaxConcurrentJobs = 3

// DefaultMaxRetries bounds how many times a failed generation may be
// retried when no explicit limit is configured.
const DefaultMaxRetries = 3

// Options configures an Engine.
type Options struct {
	// MaxConcurrentJobs caps the number of jobs in Processing at once.
	// Zero or negative means DefaultMaxConcurrentJobs.
	MaxConcurrentJobs int

	// MaxRetries caps retry attempts per generation lineage.
	// Zero or negative means DefaultMaxRetries.
	MaxRetries int

	// Publisher is optional. When nil, publish requests are skipped and
	// documents carry no external URL.
	Publisher WikiPublisher
}

// Engine coordinates document generation for collaboration sessions.
// It owns the job state machine and drives synthesis, registration,
// notification, and optional wiki publication per document type.
type Engine struct {
	board       *docboard.Client
	registry    *registry.Registry
	broadcaster *notify.Broadcaster
	teams       TeamDirectory
	templates   TemplateCatalog
	publisher   WikiPublisher

	maxRetries int
	slots      chan struct{}

	mu        sync.Mutex
	cancelled map[string]bool // jobID -> cancel requested
}

// NewEngine creates a generation engine.
func NewEngine(board *docboard.Client, reg *registry.Registry, broadcaster *notify.Broadcaster, teams TeamDirectory, templates TemplateCatalog, opts Options) *Engine {
	maxJobs := opts.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = DefaultMaxConcurrentJobs
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &Engine{
		board:       board,
		registry:    reg,
		broadcaster: broadcaster,
		teams:       teams,
		templates:   templates,
		publisher:   opts.Publisher,
		maxRetries:  maxRetries,
		slots:       make(chan struct{}, maxJobs),
		cancelled:   make(map[string]bool),
	}
}

// Result reports the outcome of a generation run.
type Result struct {
	Job       *docboard.GenerationJob
	Documents []*docboard.GeneratedDocument

	// Failed maps document types that could not be generated to the
	// error that stopped them.
	Failed map[string]error
}

// Generate runs a full generation for a session. It validates the team's
// configuration, creates a Queued job, waits for a free slot, and then
// processes each resolved document type in order. A failure in one type
// does not stop the others. The returned Result's Job reflects the final
// terminal state.
//
// Returns ErrNoConfiguration before creating any job when the team has no
// persona configuration.
func (e *Engine) Generate(ctx context.Context, req *docboard.GenerationRequest) (*Result, error) {
	sctx := &req.Context
	if err := sctx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session context: %w", err)
	}

	personas, err := e.teams.TeamConfigs(ctx, sctx.TeamID)
	if err != nil {
		return nil, fmt.Errorf("looking up team %s: %w", sctx.TeamID, err)
	}
	docTypes := resolveDocumentTypes(personas, req.Options.TemplateOverrides)
	if len(docTypes) == 0 {
		return nil, fmt.Errorf("team %s: %w", sctx.TeamID, ErrNoConfiguration)
	}

	job := &docboard.GenerationJob{
		ID:            uuid.New().String(),
		SessionID:     sctx.SessionID,
		TeamID:        sctx.TeamID,
		Status:        docboard.JobStatusQueued,
		DocumentTypes: docTypes,
		MaxRetries:    e.maxRetries,
		CreatedAtMs:   time.Now().UnixMilli(),
	}
	if err := e.board.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	e.logEvent("job_queued", map[string]interface{}{
		"job_id":         job.ID,
		"session_id":     job.SessionID,
		"team_id":        job.TeamID,
		"document_types": job.DocumentTypes,
	})

	return e.run(ctx, job, sctx, req.Options, personas)
}

// RetryGeneration creates a new job continuing a failed or cancelled
// job's lineage. The new job inherits the prior job's document types as
// forced overrides and carries RetryCount+1. Returns ErrJobNotFound when
// the prior job is unknown, ErrRetryExhausted when the retry budget is
// spent, and an error when the prior job is not in a terminal state.
func (e *Engine) RetryGeneration(ctx context.Context, jobID string, sctx *docboard.SessionContext, opts docboard.Options) (*Result, error) {
	prior, err := e.board.GetJob(ctx, jobID)
	if err != nil {
		if docboard.IsNotFound(err) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return nil, fmt.Errorf("fetching job %s: %w", jobID, err)
	}
	if !prior.Status.IsTerminal() {
		return nil, fmt.Errorf("job %s is %s, not terminal", jobID, prior.Status)
	}
	if prior.RetryCount >= prior.MaxRetries {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrRetryExhausted)
	}

	if err := sctx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session context: %w", err)
	}
	if sctx.SessionID != prior.SessionID {
		return nil, fmt.Errorf("session %s does not match job %s session %s", sctx.SessionID, jobID, prior.SessionID)
	}

	personas, err := e.teams.TeamConfigs(ctx, sctx.TeamID)
	if err != nil {
		return nil, fmt.Errorf("looking up team %s: %w", sctx.TeamID, err)
	}

	// Force the prior job's document types back on regardless of what
	// the persona configuration currently enables.
	if opts.TemplateOverrides == nil {
		opts.TemplateOverrides = make(map[string]bool)
	}
	for _, docType := range prior.DocumentTypes {
		opts.TemplateOverrides[docType] = true
	}

	docTypes := resolveDocumentTypes(personas, opts.TemplateOverrides)
	if len(docTypes) == 0 {
		return nil, fmt.Errorf("team %s: %w", sctx.TeamID, ErrNoConfiguration)
	}

	job := &docboard.GenerationJob{
		ID:            uuid.New().String(),
		SessionID:     prior.SessionID,
		TeamID:        sctx.TeamID,
		Status:        docboard.JobStatusQueued,
		DocumentTypes: docTypes,
		RetryCount:    prior.RetryCount + 1,
		MaxRetries:    prior.MaxRetries,
		CreatedAtMs:   time.Now().UnixMilli(),
	}
	if err := e.board.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating retry job: %w", err)
	}

	e.logEvent("job_retried", map[string]interface{}{
		"job_id":       job.ID,
		"prior_job_id": prior.ID,
		"retry_count":  job.RetryCount,
		"max_retries":  job.MaxRetries,
	})

	return e.run(ctx, job, sctx, opts, personas)
}

// CancelJob requests cooperative cancellation of a running or queued job.
// The running generation observes the request between document types and
// before storing an in-flight document, whose result is then discarded.
// Returns ErrJobNotFound for unknown jobs; cancelling an already terminal
// job is a no-op.
func (e *Engine) CancelJob(ctx context.Context, jobID string) error {
	job, err := e.board.GetJob(ctx, jobID)
	if err != nil {
		if docboard.IsNotFound(err) {
			return fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return fmt.Errorf("fetching job %s: %w", jobID, err)
	}
	if job.Status.IsTerminal() {
		return nil
	}

	e.mu.Lock()
	e.cancelled[jobID] = true
	e.mu.Unlock()

	// The marker makes cancellation visible to an engine running in
	// another process.
	if err := e.board.RequestCancel(ctx, jobID); err != nil {
		return fmt.Errorf("recording cancel request for job %s: %w", jobID, err)
	}

	e.logEvent("cancel_requested", map[string]interface{}{"job_id": jobID})
	return nil
}

// GetJobStatus returns the job record, or ErrJobNotFound.
func (e *Engine) GetJobStatus(ctx context.Context, jobID string) (*docboard.GenerationJob, error) {
	job, err := e.board.GetJob(ctx, jobID)
	if err != nil {
		if docboard.IsNotFound(err) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
		}
		return nil, err
	}
	return job, nil
}

// GetJobsForSession returns all jobs recorded for a session, newest first.
func (e *Engine) GetJobsForSession(ctx context.Context, sessionID string) ([]*docboard.GenerationJob, error) {
	jobs, err := e.board.JobsForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing jobs for session %s: %w", sessionID, err)
	}
	return jobs, nil
}

// run drives a created job through its lifecycle. It blocks on slot
// admission, so concurrent callers beyond the configured limit wait.
func (e *Engine) run(ctx context.Context, job *docboard.GenerationJob, sctx *docboard.SessionContext, opts docboard.Options, personas []PersonaConfig) (*Result, error) {
	select {
	case e.slots <- struct{}{}:
	case <-ctx.Done():
		e.finishJob(context.WithoutCancel(ctx), job, docboard.JobStatusCancelled, ctx.Err().Error())
		return nil, ctx.Err()
	}
	defer func() { <-e.slots }()

	defer func() {
		e.mu.Lock()
		delete(e.cancelled, job.ID)
		e.mu.Unlock()
		if err := e.board.ClearCancel(context.WithoutCancel(ctx), job.ID); err != nil {
			log.Printf("[Engine] Failed to clear cancel marker for job %s: %v", job.ID, err)
		}
	}()

	job.Status = docboard.JobStatusProcessing
	job.StartedAtMs = time.Now().UnixMilli()
	if err := e.board.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("marking job processing: %w", err)
	}

	result := &Result{
		Job:    job,
		Failed: make(map[string]error),
	}

	for _, docType := range job.DocumentTypes {
		if e.isCancelled(ctx, job.ID) {
			return e.finishCancelled(ctx, job, result)
		}

		doc, err := e.generateOne(ctx, job, sctx, opts, docType, ownerFor(personas, docType))
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return e.finishCancelled(ctx, job, result)
			}
			result.Failed[docType] = err
			log.Printf("[Engine] Job %s: document type %s failed: %v", job.ID, docType, err)
			continue
		}
		result.Documents = append(result.Documents, doc)
		job.ProducedDocuments = append(job.ProducedDocuments, doc.ID)
	}

	// A cancel that lands after the last type finishes still decides the
	// terminal state. Types that completed before the cancel keep their
	// documents.
	if e.isCancelled(ctx, job.ID) {
		return e.finishCancelled(ctx, job, result)
	}

	if len(result.Documents) == 0 {
		errMsg := "all document types failed"
		for docType, typeErr := range result.Failed {
			errMsg = fmt.Sprintf("%s: %v", docType, typeErr)
			break
		}
		e.finishJob(ctx, job, docboard.JobStatusFailed, errMsg)
		e.emitError(ctx, job.ID, sctx.SessionID, "", errMsg, job.RetryCount < job.MaxRetries)
	} else {
		e.finishJob(ctx, job, docboard.JobStatusCompleted, "")
	}

	e.logEvent("job_finished", map[string]interface{}{
		"job_id":    job.ID,
		"status":    string(job.Status),
		"generated": len(result.Documents),
		"failed":    len(result.Failed),
	})

	return result, nil
}

// finishCancelled transitions a job to Cancelled and returns the partial
// result with ErrCancelled. The in-flight document type, if any, has
// already been discarded by generateOne.
func (e *Engine) finishCancelled(ctx context.Context, job *docboard.GenerationJob, result *Result) (*Result, error) {
	e.finishJob(ctx, job, docboard.JobStatusCancelled, "cancelled by request")
	e.logEvent("job_cancelled", map[string]interface{}{
		"job_id":    job.ID,
		"completed": len(result.Documents),
		"remaining": len(job.DocumentTypes) - len(result.Documents) - len(result.Failed),
	})
	return result, fmt.Errorf("job %s: %w", job.ID, ErrCancelled)
}

// generateOne runs the full pipeline for a single document type.
func (e *Engine) generateOne(ctx context.Context, job *docboard.GenerationJob, sctx *docboard.SessionContext, opts docboard.Options, docType string, owner PersonaConfig) (*docboard.GeneratedDocument, error) {
	retryable := job.RetryCount < job.MaxRetries

	e.emit(ctx, &docboard.Event{
		Type:         docboard.EventTypeGenerating,
		SessionID:    sctx.SessionID,
		JobID:        job.ID,
		DocumentType: docType,
		Persona:      owner.PersonaID,
		Message:      fmt.Sprintf("Generating %s", docType),
	})

	tmpl, err := e.templates.Template(ctx, docType)
	if err != nil {
		e.emitError(ctx, job.ID, sctx.SessionID, docType, fmt.Sprintf("%s: %v", docType, err), retryable)
		return nil, err
	}

	title, content := renderDocument(tmpl, sctx)
	if content == "" {
		err := fmt.Errorf("%s: empty document: %w", docType, ErrRender)
		e.emitError(ctx, job.ID, sctx.SessionID, docType, err.Error(), retryable)
		return nil, err
	}

	e.emit(ctx, &docboard.Event{
		Type:         docboard.EventTypeProgress,
		SessionID:    sctx.SessionID,
		JobID:        job.ID,
		DocumentType: docType,
		Persona:      owner.PersonaID,
		Progress:     50,
		Message:      fmt.Sprintf("Rendered %d sections for %s", len(tmpl.Sections), docType),
	})

	doc := &docboard.GeneratedDocument{
		ID:             uuid.New().String(),
		JobID:          job.ID,
		SessionID:      sctx.SessionID,
		DocumentType:   docType,
		Title:          title,
		Content:        content,
		OwnerPersonaID: owner.PersonaID,
		OwnerRole:      owner.Role,
		CreatedAtMs:    time.Now().UnixMilli(),
	}
	if opts.IncludeSummary {
		doc.Summary = renderSummary(tmpl)
	}

	if opts.Publish && e.publisher != nil {
		published, err := e.publisher.Publish(ctx, doc)
		if err != nil {
			wrapped := fmt.Errorf("%s: %v: %w", docType, err, ErrPublish)
			e.emitError(ctx, job.ID, sctx.SessionID, docType, wrapped.Error(), retryable)
			return nil, wrapped
		}
		doc.URL = published.URL
		doc.PageID = published.PageID
	}

	// A cancel observed here discards the rendered document instead of
	// storing it and emitting Complete for a job that is being stopped.
	if e.isCancelled(ctx, job.ID) {
		return nil, fmt.Errorf("job %s: %w", job.ID, ErrCancelled)
	}

	if err := e.board.PutDocument(ctx, doc); err != nil {
		err = fmt.Errorf("storing document %s: %w", doc.ID, err)
		e.emitError(ctx, job.ID, sctx.SessionID, docType, err.Error(), retryable)
		return nil, err
	}

	if _, err := e.registry.Register(ctx, doc, sctx.TeamID, nil); err != nil {
		err = fmt.Errorf("registering document %s: %w", doc.ID, err)
		e.emitError(ctx, job.ID, sctx.SessionID, docType, err.Error(), retryable)
		return nil, err
	}

	e.emit(ctx, &docboard.Event{
		Type:         docboard.EventTypeComplete,
		SessionID:    sctx.SessionID,
		JobID:        job.ID,
		DocumentType: docType,
		Persona:      owner.PersonaID,
		Progress:     100,
		Message:      fmt.Sprintf("%s ready", title),
		DocumentID:   doc.ID,
		URL:          doc.URL,
	})

	return doc, nil
}

// resolveDocumentTypes computes the ordered set of document types a job
// will produce. Base types come from persona configuration in order, first
// occurrence wins. Overrides add types set true and remove types set false.
func resolveDocumentTypes(personas []PersonaConfig, overrides map[string]bool) []string {
	seen := make(map[string]bool)
	var types []string
	add := func(docType string) {
		if docType == "" || seen[docType] {
			return
		}
		seen[docType] = true
		types = append(types, docType)
	}

	for _, persona := range personas {
		for _, docType := range persona.DocumentTypes {
			if enabled, overridden := overrides[docType]; overridden && !enabled {
				seen[docType] = true
				continue
			}
			add(docType)
		}
	}
	for docType, enabled := range overrides {
		if enabled {
			add(docType)
		}
	}

	var out []string
	for _, docType := range types {
		if enabled, overridden := overrides[docType]; overridden && !enabled {
			continue
		}
		out = append(out, docType)
	}
	return out
}

// ownerFor returns the first persona configured to produce the given
// document type, or a zero PersonaConfig when none is.
func ownerFor(personas []PersonaConfig, docType string) PersonaConfig {
	for _, persona := range personas {
		for _, t := range persona.DocumentTypes {
			if t == docType {
				return persona
			}
		}
	}
	return PersonaConfig{}
}

func (e *Engine) isCancelled(ctx context.Context, jobID string) bool {
	e.mu.Lock()
	local := e.cancelled[jobID]
	e.mu.Unlock()
	if local {
		return true
	}

	requested, err := e.board.CancelRequested(ctx, jobID)
	if err != nil {
		log.Printf("[Engine] Failed to check cancel marker for job %s: %v", jobID, err)
		return false
	}
	return requested
}

// finishJob transitions a job to a terminal state and persists it.
// Persistence errors are logged, not returned, since the run outcome is
// already decided.
func (e *Engine) finishJob(ctx context.Context, job *docboard.GenerationJob, status docboard.JobStatus, lastError string) {
	job.Status = status
	job.LastError = lastError
	job.CompletedAtMs = time.Now().UnixMilli()
	if err := e.board.UpdateJob(ctx, job); err != nil {
		log.Printf("[Engine] Failed to persist terminal state for job %s: %v", job.ID, err)
	}
}

func (e *Engine) emit(ctx context.Context, event *docboard.Event) {
	if err := e.broadcaster.Emit(ctx, event); err != nil {
		log.Printf("[Engine] Failed to emit %s event for session %s: %v", event.Type, event.SessionID, err)
	}
}

func (e *Engine) emitError(ctx context.Context, jobID, sessionID, docType, message string, retryable bool) {
	e.emit(ctx, &docboard.Event{
		Type:         docboard.EventTypeError,
		SessionID:    sessionID,
		JobID:        jobID,
		DocumentType: docType,
		Error:        message,
		Retryable:    retryable,
	})
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "engine"
	data["event_type"] = eventType

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Engine] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
