// Package docboard provides type-safe Go definitions and Redis schema patterns
// for the Scribe document board.
//
// # Overview
//
// The docboard is the shared state system where all Scribe components
// (orchestrator engine, daemon, CLI) interact via well-defined data structures
// stored in Redis. It holds generation jobs, the documents they produce, and
// the artifact registry entries that index those documents, plus the rolling
// event logs and Pub/Sub channels used for real-time progress delivery.
//
// # Core Concepts
//
// Generation jobs track one invocation of the document pipeline for a
// completed collaboration session. A job moves from queued through processing
// to a terminal state (completed, failed, or cancelled) and is never deleted,
// so past invocations remain queryable.
//
// Generated documents are immutable work products. A later generation of the
// same document type for the same session supersedes an earlier one; it never
// mutates it.
//
// Artifact entries are the registry's durable records of a generated
// document's latest state. Each entry is indexed by team, by session, and by
// document type, and carries a version that increments every time the same
// (team, session, type) combination is re-registered.
//
// # Multi-Instance Support
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so that
// multiple Scribe instances can safely coexist on a single Redis server. Each
// instance has complete isolation of its data and events.
//
// # Usage Example
//
//	import "scribe/pkg/docboard"
//
//	client, err := docboard.NewClient(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	job := &docboard.GenerationJob{
//		ID:         uuid.New().String(),
//		SessionID:  "s1",
//		TeamID:     "t1",
//		Status:     docboard.JobStatusQueued,
//		MaxRetries: 3,
//	}
//	if err := client.CreateJob(ctx, job); err != nil {
//		log.Fatal(err)
//	}
package docboard
