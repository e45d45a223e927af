package docboard

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name to
// enable multiple Scribe instances to safely coexist on a single Redis
// server.
//
// Key pattern: scribe:{instance_name}:{entity}:{id}
// Channel pattern: scribe:{instance_name}:{scope}_events

// JobKey returns the Redis key for a generation job.
// Pattern: scribe:{instance_name}:job:{job_id}
func JobKey(instanceName, jobID string) string {
	return fmt.Sprintf("scribe:%s:job:%s", instanceName, jobID)
}

// SessionJobsKey returns the Redis key for the session->jobs index SET.
// Pattern: scribe:{instance_name}:session_jobs:{session_id}
func SessionJobsKey(instanceName, sessionID string) string {
	return fmt.Sprintf("scribe:%s:session_jobs:%s", instanceName, sessionID)
}

// JobCancelKey returns the Redis key for a job's cooperative cancel marker.
// The generation engine polls this between document types, so cancellation
// requests work across processes.
// Pattern: scribe:{instance_name}:job_cancel:{job_id}
func JobCancelKey(instanceName, jobID string) string {
	return fmt.Sprintf("scribe:%s:job_cancel:%s", instanceName, jobID)
}

// DocumentKey returns the Redis key for a generated document.
// Pattern: scribe:{instance_name}:document:{document_id}
func DocumentKey(instanceName, documentID string) string {
	return fmt.Sprintf("scribe:%s:document:%s", instanceName, documentID)
}

// ArtifactKey returns the Redis key for an artifact registry entry.
// Pattern: scribe:{instance_name}:artifact:{artifact_id}
func ArtifactKey(instanceName, artifactID string) string {
	return fmt.Sprintf("scribe:%s:artifact:%s", instanceName, artifactID)
}

// ArtifactCurrentKey returns the Redis key holding the current artifact ID
// for a (team, session, document type) combination. This pointer is what
// makes re-registration an in-place versioned upsert instead of a duplicate.
// Pattern: scribe:{instance_name}:artifact_current:{team}:{session}:{type}
func ArtifactCurrentKey(instanceName, teamID, sessionID, documentType string) string {
	return fmt.Sprintf("scribe:%s:artifact_current:%s:%s:%s", instanceName, teamID, sessionID, documentType)
}

// ArtifactsByTeamKey returns the Redis key for the team index SET of
// artifact IDs.
// Pattern: scribe:{instance_name}:artifacts_by_team:{team_id}
func ArtifactsByTeamKey(instanceName, teamID string) string {
	return fmt.Sprintf("scribe:%s:artifacts_by_team:%s", instanceName, teamID)
}

// ArtifactsBySessionKey returns the Redis key for the session index SET of
// artifact IDs.
// Pattern: scribe:{instance_name}:artifacts_by_session:{session_id}
func ArtifactsBySessionKey(instanceName, sessionID string) string {
	return fmt.Sprintf("scribe:%s:artifacts_by_session:%s", instanceName, sessionID)
}

// ArtifactsByTypeKey returns the Redis key for the document-type index SET
// of artifact IDs.
// Pattern: scribe:{instance_name}:artifacts_by_type:{document_type}
func ArtifactsByTypeKey(instanceName, documentType string) string {
	return fmt.Sprintf("scribe:%s:artifacts_by_type:%s", instanceName, documentType)
}

// AllArtifactsKey returns the Redis key for the SET of every artifact ID in
// the instance. Used for unfiltered searches and statistics.
// Pattern: scribe:{instance_name}:artifacts
func AllArtifactsKey(instanceName string) string {
	return fmt.Sprintf("scribe:%s:artifacts", instanceName)
}

// EventLogKey returns the Redis key for a session's rolling event log LIST.
// Pattern: scribe:{instance_name}:event_log:{session_id}
func EventLogKey(instanceName, sessionID string) string {
	return fmt.Sprintf("scribe:%s:event_log:%s", instanceName, sessionID)
}

// SessionEventsChannel returns the Pub/Sub channel name for a session's
// progress events. This is the "room" external observers subscribe to.
// Pattern: scribe:{instance_name}:session:{session_id}
func SessionEventsChannel(instanceName, sessionID string) string {
	return fmt.Sprintf("scribe:%s:session:%s", instanceName, sessionID)
}

// GenerationRequestsChannel returns the Pub/Sub channel name for generation
// requests consumed by the daemon.
// Pattern: scribe:{instance_name}:generation_requests
func GenerationRequestsChannel(instanceName string) string {
	return fmt.Sprintf("scribe:%s:generation_requests", instanceName)
}
