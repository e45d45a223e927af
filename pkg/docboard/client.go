package docboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MaxEventLogSize caps a session's rolling event log. When the log
	// exceeds this size it is trimmed down to EventLogTrimSize, dropping
	// the oldest events first.
	MaxEventLogSize = 1000

	// EventLogTrimSize is the log length kept after an overflow trim.
	EventLogTrimSize = MaxEventLogSize / 2
)

// Client provides instance-scoped Redis operations for the docboard.
// All keys and channels are automatically namespaced with the instance name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a new docboard client for the specified instance.
// The client automatically namespaces all keys and channels with the instance name.
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CreateJob writes a generation job to Redis and adds it to the session's
// job index. Validates the job before writing.
//
// The job is stored as a Redis hash at scribe:{instance}:job:{id}.
func (c *Client) CreateJob(ctx context.Context, job *GenerationJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	hash, err := JobToHash(job)
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	key := JobKey(c.instanceName, job.ID)
	indexKey := SessionJobsKey(c.instanceName, job.SessionID)

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, hash)
		pipe.SAdd(ctx, indexKey, job.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write job to Redis: %w", err)
	}

	return nil
}

// GetJob retrieves a generation job by ID.
// Returns (nil, redis.Nil) if the job doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetJob(ctx context.Context, jobID string) (*GenerationJob, error) {
	key := JobKey(c.instanceName, jobID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read job from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	job, err := HashToJob(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize job: %w", err)
	}

	return job, nil
}

// UpdateJob replaces an existing job with new data (full replacement).
// Used by the orchestrator to update status and produced documents as the
// job progresses through its lifecycle. Validates the job before writing.
func (c *Client) UpdateJob(ctx context.Context, job *GenerationJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	hash, err := JobToHash(job)
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	key := JobKey(c.instanceName, job.ID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to update job in Redis: %w", err)
	}

	return nil
}

// JobsForSession retrieves every job recorded for a session, in no
// particular order. Returns an empty slice if the session has no jobs.
func (c *Client) JobsForSession(ctx context.Context, sessionID string) ([]*GenerationJob, error) {
	indexKey := SessionJobsKey(c.instanceName, sessionID)

	ids, err := c.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session job index: %w", err)
	}

	jobs := make([]*GenerationJob, 0, len(ids))
	for _, id := range ids {
		job, err := c.GetJob(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAtMs > jobs[j].CreatedAtMs
	})

	return jobs, nil
}

// RequestCancel sets the cooperative cancel marker for a job. The marker
// expires on its own so abandoned requests do not accumulate.
func (c *Client) RequestCancel(ctx context.Context, jobID string) error {
	key := JobCancelKey(c.instanceName, jobID)
	if err := c.rdb.Set(ctx, key, "1", 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set cancel marker: %w", err)
	}
	return nil
}

// CancelRequested reports whether a job's cancel marker is set.
func (c *Client) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	key := JobCancelKey(c.instanceName, jobID)
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cancel marker: %w", err)
	}
	return n > 0, nil
}

// ClearCancel removes a job's cancel marker.
func (c *Client) ClearCancel(ctx context.Context, jobID string) error {
	key := JobCancelKey(c.instanceName, jobID)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear cancel marker: %w", err)
	}
	return nil
}

// PutDocument writes a generated document to Redis.
// Documents are immutable; callers never overwrite an existing ID.
func (c *Client) PutDocument(ctx context.Context, doc *GeneratedDocument) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	key := DocumentKey(c.instanceName, doc.ID)
	if err := c.rdb.HSet(ctx, key, DocumentToHash(doc)).Err(); err != nil {
		return fmt.Errorf("failed to write document to Redis: %w", err)
	}

	return nil
}

// GetDocument retrieves a generated document by ID.
// Returns (nil, redis.Nil) if the document doesn't exist.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*GeneratedDocument, error) {
	key := DocumentKey(c.instanceName, documentID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read document from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	doc, err := HashToDocument(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize document: %w", err)
	}

	return doc, nil
}

// PutArtifact writes an artifact entry and updates the current pointer plus
// all index sets in one transaction. A document must never be findable by
// team but not by session, so the primary hash and every index are updated
// atomically.
func (c *Client) PutArtifact(ctx context.Context, entry *ArtifactEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid artifact: %w", err)
	}

	hash, err := ArtifactToHash(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize artifact: %w", err)
	}

	key := ArtifactKey(c.instanceName, entry.ID)
	currentKey := ArtifactCurrentKey(c.instanceName, entry.TeamID, entry.SessionID, entry.DocumentType)

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, hash)
		pipe.Set(ctx, currentKey, entry.ID, 0)
		pipe.SAdd(ctx, ArtifactsByTeamKey(c.instanceName, entry.TeamID), entry.ID)
		pipe.SAdd(ctx, ArtifactsBySessionKey(c.instanceName, entry.SessionID), entry.ID)
		pipe.SAdd(ctx, ArtifactsByTypeKey(c.instanceName, entry.DocumentType), entry.ID)
		pipe.SAdd(ctx, AllArtifactsKey(c.instanceName), entry.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write artifact to Redis: %w", err)
	}

	return nil
}

// GetArtifact retrieves an artifact entry by ID.
// Returns (nil, redis.Nil) if the artifact doesn't exist.
func (c *Client) GetArtifact(ctx context.Context, artifactID string) (*ArtifactEntry, error) {
	key := ArtifactKey(c.instanceName, artifactID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	entry, err := HashToArtifact(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize artifact: %w", err)
	}

	return entry, nil
}

// GetCurrentArtifact retrieves the current artifact entry for a
// (team, session, document type) combination.
// Returns (nil, redis.Nil) if no entry has been registered for it.
func (c *Client) GetCurrentArtifact(ctx context.Context, teamID, sessionID, documentType string) (*ArtifactEntry, error) {
	currentKey := ArtifactCurrentKey(c.instanceName, teamID, sessionID, documentType)

	id, err := c.rdb.Get(ctx, currentKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read current artifact pointer: %w", err)
	}

	return c.GetArtifact(ctx, id)
}

// DeleteArtifact removes an artifact entry from the primary store, the
// current pointer, and every index set in one transaction.
// Returns false if the artifact doesn't exist.
func (c *Client) DeleteArtifact(ctx context.Context, artifactID string) (bool, error) {
	entry, err := c.GetArtifact(ctx, artifactID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	currentKey := ArtifactCurrentKey(c.instanceName, entry.TeamID, entry.SessionID, entry.DocumentType)

	// Only clear the pointer when it still references this entry.
	currentID, err := c.rdb.Get(ctx, currentKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to read current artifact pointer: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, ArtifactKey(c.instanceName, artifactID))
		if currentID == artifactID {
			pipe.Del(ctx, currentKey)
		}
		pipe.SRem(ctx, ArtifactsByTeamKey(c.instanceName, entry.TeamID), artifactID)
		pipe.SRem(ctx, ArtifactsBySessionKey(c.instanceName, entry.SessionID), artifactID)
		pipe.SRem(ctx, ArtifactsByTypeKey(c.instanceName, entry.DocumentType), artifactID)
		pipe.SRem(ctx, AllArtifactsKey(c.instanceName), artifactID)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete artifact from Redis: %w", err)
	}

	return true, nil
}

// ArtifactIDsByTeam returns the IDs in the team index set.
func (c *Client) ArtifactIDsByTeam(ctx context.Context, teamID string) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, ArtifactsByTeamKey(c.instanceName, teamID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read team artifact index: %w", err)
	}
	return ids, nil
}

// ArtifactIDsBySession returns the IDs in the session index set.
func (c *Client) ArtifactIDsBySession(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, ArtifactsBySessionKey(c.instanceName, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session artifact index: %w", err)
	}
	return ids, nil
}

// ArtifactIDsByType returns the IDs in the document-type index set.
func (c *Client) ArtifactIDsByType(ctx context.Context, documentType string) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, ArtifactsByTypeKey(c.instanceName, documentType)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read type artifact index: %w", err)
	}
	return ids, nil
}

// AllArtifactIDs returns every artifact ID registered for the instance.
func (c *Client) AllArtifactIDs(ctx context.Context) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, AllArtifactsKey(c.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact set: %w", err)
	}
	return ids, nil
}

// AppendEvent appends an event to the session's rolling log. When the log
// grows past MaxEventLogSize it is trimmed to the newest EventLogTrimSize
// entries.
func (c *Client) AppendEvent(ctx context.Context, event *Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := EventLogKey(c.instanceName, event.SessionID)

	length, err := c.rdb.RPush(ctx, key, eventJSON).Result()
	if err != nil {
		return fmt.Errorf("failed to append event to log: %w", err)
	}

	if length > MaxEventLogSize {
		if err := c.rdb.LTrim(ctx, key, -int64(EventLogTrimSize), -1).Err(); err != nil {
			return fmt.Errorf("failed to trim event log: %w", err)
		}
	}

	return nil
}

// RecentEvents returns up to limit of the newest events in a session's
// rolling log, oldest first. A limit <= 0 returns the whole retained log.
func (c *Client) RecentEvents(ctx context.Context, sessionID string, limit int) ([]*Event, error) {
	key := EventLogKey(c.instanceName, sessionID)

	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	raw, err := c.rdb.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	events := make([]*Event, 0, len(raw))
	for _, payload := range raw {
		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal logged event: %w", err)
		}
		events = append(events, &event)
	}

	return events, nil
}

// PublishSessionEvent publishes an event to the session's Pub/Sub channel
// for external observers.
func (c *Client) PublishSessionEvent(ctx context.Context, event *Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := SessionEventsChannel(c.instanceName, event.SessionID)
	if err := c.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}

	return nil
}

// PublishGenerationRequest publishes a generation request for the daemon.
func (c *Client) PublishGenerationRequest(ctx context.Context, req *GenerationRequest) error {
	if err := req.Context.Validate(); err != nil {
		return fmt.Errorf("invalid generation request: %w", err)
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal generation request: %w", err)
	}

	channel := GenerationRequestsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, reqJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish generation request: %w", err)
	}

	return nil
}

// EventSubscription represents an active Pub/Sub subscription to a session's
// progress events. Caller must call Close() when done to clean up resources.
type EventSubscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of session events.
// The channel will be closed when the subscription is closed or the context
// is cancelled.
func (s *EventSubscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *EventSubscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *EventSubscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// RequestSubscription represents an active Pub/Sub subscription to the
// generation-requests channel. Caller must call Close() when done.
type RequestSubscription struct {
	requests <-chan *GenerationRequest
	errors   <-chan error
	cancel   func()
	once     sync.Once
}

// Requests returns the channel of generation requests.
func (s *RequestSubscription) Requests() <-chan *GenerationRequest {
	return s.requests
}

// Errors returns the channel of subscription errors.
func (s *RequestSubscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
func (s *RequestSubscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeSessionEvents subscribes to a session's progress events.
// Returns an EventSubscription that delivers full event objects.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery).
func (c *Client) SubscribeSessionEvents(ctx context.Context, sessionID string) (*EventSubscription, error) {
	channel := SessionEventsChannel(c.instanceName, sessionID)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal session event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &EventSubscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// SubscribeGenerationRequests subscribes to the generation-requests channel.
// Returns a RequestSubscription that delivers full request objects.
// Caller must call subscription.Close() when done.
func (c *Client) SubscribeGenerationRequests(ctx context.Context) (*RequestSubscription, error) {
	channel := GenerationRequestsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	requestsChan := make(chan *GenerationRequest, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(requestsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var req GenerationRequest
				if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal generation request: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case requestsChan <- &req:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &RequestSubscription{
		requests: requestsChan,
		errors:   errorsChan,
		cancel:   cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check if GetJob, GetDocument, GetArtifact, or
// GetCurrentArtifact returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
