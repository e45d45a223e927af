// Package registry implements the artifact registry: the durable, multi-index
// catalog of every document the generation pipeline has produced.
//
// The registry owns upsert semantics. Registering a document for a
// (team, session, document type) combination that already has a current entry
// increments that entry's version and overwrites its mutable fields in place;
// it never creates a duplicate. The docboard client keeps the primary store
// and the team/session/type indexes consistent under every mutation.
package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"scribe/pkg/docboard"
)

// Registry provides artifact registration, search, and maintenance over the
// docboard store.
type Registry struct {
	board *docboard.Client
}

// New creates a registry backed by the given docboard client.
func New(board *docboard.Client) *Registry {
	return &Registry{board: board}
}

// Filter selects artifacts in Search. All set fields must match
// (conjunctive); Tags matches when the entry carries any of the listed tags.
type Filter struct {
	TeamID          string
	SessionID       string
	DocumentType    string
	Tags            []string
	CreatedAfterMs  int64
	CreatedBeforeMs int64
}

// Statistics summarizes the registry's contents, optionally scoped to a team.
type Statistics struct {
	TotalArtifacts int            `json:"total_artifacts"`
	ByType         map[string]int `json:"by_type"`
	ByTeam         map[string]int `json:"by_team"`
	LastUpdatedMs  int64          `json:"last_updated_ms"`
}

// Register records a generated document in the registry.
//
// If a current entry already exists for (team, session, document type), its
// version is incremented and its document reference, title, external URL, and
// tags are overwritten; the entry ID and creation time are preserved.
// Otherwise a new entry is created at version 1.
func (r *Registry) Register(ctx context.Context, doc *docboard.GeneratedDocument, teamID string, tags []string) (*docboard.ArtifactEntry, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	if teamID == "" {
		return nil, fmt.Errorf("team_id cannot be empty")
	}

	now := time.Now().UnixMilli()

	existing, err := r.board.GetCurrentArtifact(ctx, teamID, doc.SessionID, doc.DocumentType)
	if err != nil && !docboard.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up current artifact: %w", err)
	}

	var entry *docboard.ArtifactEntry
	if existing != nil {
		existing.Version++
		existing.DocumentID = doc.ID
		existing.Title = doc.Title
		existing.ExternalURL = doc.URL
		existing.Tags = mergeTags(existing.Tags, tags)
		existing.UpdatedAtMs = now
		entry = existing
	} else {
		entry = &docboard.ArtifactEntry{
			ID:           uuid.New().String(),
			TeamID:       teamID,
			SessionID:    doc.SessionID,
			DocumentID:   doc.ID,
			DocumentType: doc.DocumentType,
			Title:        doc.Title,
			ExternalURL:  doc.URL,
			Version:      1,
			Tags:         mergeTags(nil, tags),
			CreatedAtMs:  now,
			UpdatedAtMs:  now,
		}
	}

	if err := r.board.PutArtifact(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Get retrieves an artifact entry by ID.
// Returns a not-found error checkable with docboard.IsNotFound.
func (r *Registry) Get(ctx context.Context, artifactID string) (*docboard.ArtifactEntry, error) {
	return r.board.GetArtifact(ctx, artifactID)
}

// GetCurrent retrieves the current entry for a (team, session, document
// type) triple. Returns a not-found error checkable with
// docboard.IsNotFound when nothing has been registered for the triple.
func (r *Registry) GetCurrent(ctx context.Context, teamID, sessionID, documentType string) (*docboard.ArtifactEntry, error) {
	return r.board.GetCurrentArtifact(ctx, teamID, sessionID, documentType)
}

// Search returns every artifact matching the filter, sorted by update time
// descending (most recently touched first). Results are not paginated; the
// caller bounds them via the filter.
func (r *Registry) Search(ctx context.Context, filter Filter) ([]*docboard.ArtifactEntry, error) {
	ids, err := r.candidateIDs(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]*docboard.ArtifactEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.board.GetArtifact(ctx, id)
		if err != nil {
			if docboard.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		if !matchesFilter(entry, filter) {
			continue
		}
		results = append(results, entry)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].UpdatedAtMs > results[j].UpdatedAtMs
	})

	return results, nil
}

// candidateIDs narrows the search space using whichever index sets the filter
// names, intersecting them. With no indexed field set, every artifact is a
// candidate.
func (r *Registry) candidateIDs(ctx context.Context, filter Filter) ([]string, error) {
	var idSets [][]string

	if filter.TeamID != "" {
		ids, err := r.board.ArtifactIDsByTeam(ctx, filter.TeamID)
		if err != nil {
			return nil, err
		}
		idSets = append(idSets, ids)
	}

	if filter.SessionID != "" {
		ids, err := r.board.ArtifactIDsBySession(ctx, filter.SessionID)
		if err != nil {
			return nil, err
		}
		idSets = append(idSets, ids)
	}

	if filter.DocumentType != "" {
		ids, err := r.board.ArtifactIDsByType(ctx, filter.DocumentType)
		if err != nil {
			return nil, err
		}
		idSets = append(idSets, ids)
	}

	if len(idSets) == 0 {
		return r.board.AllArtifactIDs(ctx)
	}

	return intersect(idSets), nil
}

// Update overwrites an entry's title and/or external URL. Nil fields are
// left untouched. The entry's update time is bumped; its version is not
// (version tracks re-generation, not metadata edits).
func (r *Registry) Update(ctx context.Context, artifactID string, title, externalURL *string) (*docboard.ArtifactEntry, error) {
	entry, err := r.board.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}

	if title != nil {
		entry.Title = *title
	}
	if externalURL != nil {
		entry.ExternalURL = *externalURL
	}
	entry.UpdatedAtMs = time.Now().UnixMilli()

	if err := r.board.PutArtifact(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// AddTags adds the given tags to an entry, ignoring duplicates.
func (r *Registry) AddTags(ctx context.Context, artifactID string, tags ...string) (*docboard.ArtifactEntry, error) {
	entry, err := r.board.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}

	entry.Tags = mergeTags(entry.Tags, tags)
	entry.UpdatedAtMs = time.Now().UnixMilli()

	if err := r.board.PutArtifact(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// RemoveTags removes the given tags from an entry. Tags the entry doesn't
// carry are ignored.
func (r *Registry) RemoveTags(ctx context.Context, artifactID string, tags ...string) (*docboard.ArtifactEntry, error) {
	entry, err := r.board.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(tags))
	for _, tag := range tags {
		remove[tag] = true
	}

	kept := entry.Tags[:0]
	for _, tag := range entry.Tags {
		if !remove[tag] {
			kept = append(kept, tag)
		}
	}
	entry.Tags = kept
	entry.UpdatedAtMs = time.Now().UnixMilli()

	if err := r.board.PutArtifact(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete removes an entry from the primary store and every index.
// Returns false if the entry doesn't exist.
func (r *Registry) Delete(ctx context.Context, artifactID string) (bool, error) {
	return r.board.DeleteArtifact(ctx, artifactID)
}

// VersionHistory returns the retained versions for a (team, session, type)
// combination, newest first.
//
// Since registration overwrites the current entry in place, only the latest
// version is retained and this returns at most one entry. True historical
// versioning would require keeping superseded entries; the overwrite
// behavior is deliberate and documented.
func (r *Registry) VersionHistory(ctx context.Context, teamID, sessionID, documentType string) ([]*docboard.ArtifactEntry, error) {
	entry, err := r.board.GetCurrentArtifact(ctx, teamID, sessionID, documentType)
	if err != nil {
		if docboard.IsNotFound(err) {
			return []*docboard.ArtifactEntry{}, nil
		}
		return nil, err
	}

	return []*docboard.ArtifactEntry{entry}, nil
}

// Statistics summarizes the registry, scoped to a team when teamID is
// non-empty.
func (r *Registry) Statistics(ctx context.Context, teamID string) (*Statistics, error) {
	var (
		ids []string
		err error
	)
	if teamID != "" {
		ids, err = r.board.ArtifactIDsByTeam(ctx, teamID)
	} else {
		ids, err = r.board.AllArtifactIDs(ctx)
	}
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		ByType: make(map[string]int),
		ByTeam: make(map[string]int),
	}

	for _, id := range ids {
		entry, err := r.board.GetArtifact(ctx, id)
		if err != nil {
			if docboard.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		stats.TotalArtifacts++
		stats.ByType[entry.DocumentType]++
		stats.ByTeam[entry.TeamID]++
		if entry.UpdatedAtMs > stats.LastUpdatedMs {
			stats.LastUpdatedMs = entry.UpdatedAtMs
		}
	}

	return stats, nil
}

// matchesFilter applies every filter field to a candidate entry.
func matchesFilter(entry *docboard.ArtifactEntry, filter Filter) bool {
	if filter.TeamID != "" && entry.TeamID != filter.TeamID {
		return false
	}
	if filter.SessionID != "" && entry.SessionID != filter.SessionID {
		return false
	}
	if filter.DocumentType != "" && entry.DocumentType != filter.DocumentType {
		return false
	}

	if filter.CreatedAfterMs > 0 && entry.CreatedAtMs < filter.CreatedAfterMs {
		return false
	}
	if filter.CreatedBeforeMs > 0 && entry.CreatedAtMs > filter.CreatedBeforeMs {
		return false
	}

	if len(filter.Tags) > 0 {
		tagged := make(map[string]bool, len(entry.Tags))
		for _, tag := range entry.Tags {
			tagged[tag] = true
		}

		anyMatch := false
		for _, tag := range filter.Tags {
			if tagged[tag] {
				anyMatch = true
				break
			}
		}
		if !anyMatch {
			return false
		}
	}

	return true
}

// intersect returns the IDs present in every set.
func intersect(idSets [][]string) []string {
	counts := make(map[string]int)
	for _, ids := range idSets {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				counts[id]++
			}
		}
	}

	var result []string
	for id, count := range counts {
		if count == len(idSets) {
			result = append(result, id)
		}
	}
	return result
}

// mergeTags unions two tag lists, preserving first-seen order.
func mergeTags(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]bool, len(existing)+len(added))
	for _, tag := range existing {
		if !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	for _, tag := range added {
		if !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	return merged
}
