package docboard

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestJobKey tests job key generation
func TestJobKey(t *testing.T) {
	jobID := uuid.New().String()

	key := JobKey("default", jobID)

	expected := "scribe:default:job:" + jobID
	if key != expected {
		t.Errorf("JobKey() = %q, expected %q", key, expected)
	}

	if !strings.HasPrefix(key, "scribe:") {
		t.Error("job key should start with 'scribe:'")
	}
}

// TestArtifactKeys tests artifact key and index key generation
func TestArtifactKeys(t *testing.T) {
	artifactID := uuid.New().String()

	if got := ArtifactKey("prod", artifactID); got != "scribe:prod:artifact:"+artifactID {
		t.Errorf("ArtifactKey() = %q", got)
	}

	if got := ArtifactCurrentKey("prod", "t1", "s1", "prd"); got != "scribe:prod:artifact_current:t1:s1:prd" {
		t.Errorf("ArtifactCurrentKey() = %q", got)
	}

	if got := ArtifactsByTeamKey("prod", "t1"); got != "scribe:prod:artifacts_by_team:t1" {
		t.Errorf("ArtifactsByTeamKey() = %q", got)
	}

	if got := ArtifactsBySessionKey("prod", "s1"); got != "scribe:prod:artifacts_by_session:s1" {
		t.Errorf("ArtifactsBySessionKey() = %q", got)
	}

	if got := ArtifactsByTypeKey("prod", "prd"); got != "scribe:prod:artifacts_by_type:prd" {
		t.Errorf("ArtifactsByTypeKey() = %q", got)
	}

	if got := AllArtifactsKey("prod"); got != "scribe:prod:artifacts" {
		t.Errorf("AllArtifactsKey() = %q", got)
	}
}

// TestSessionKeys tests session-scoped key generation
func TestSessionKeys(t *testing.T) {
	if got := SessionJobsKey("default", "s1"); got != "scribe:default:session_jobs:s1" {
		t.Errorf("SessionJobsKey() = %q", got)
	}

	if got := EventLogKey("default", "s1"); got != "scribe:default:event_log:s1" {
		t.Errorf("EventLogKey() = %q", got)
	}
}

// TestChannelNames tests Pub/Sub channel name generation
func TestChannelNames(t *testing.T) {
	if got := SessionEventsChannel("default", "s1"); got != "scribe:default:session:s1" {
		t.Errorf("SessionEventsChannel() = %q", got)
	}

	if got := GenerationRequestsChannel("default"); got != "scribe:default:generation_requests" {
		t.Errorf("GenerationRequestsChannel() = %q", got)
	}
}

// TestKeyIsolation verifies different instances produce disjoint keys
func TestKeyIsolation(t *testing.T) {
	id := uuid.New().String()
	if JobKey("a", id) == JobKey("b", id) {
		t.Error("keys for different instances should differ")
	}
}
