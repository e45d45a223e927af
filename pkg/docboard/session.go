package docboard

import "fmt"

// SessionContext carries everything the generation pipeline needs to know
// about a completed collaboration session. Callers are responsible for
// supplying current session state on every invocation, including retries.
type SessionContext struct {
	SessionID    string            `json:"session_id" yaml:"session_id"`
	TeamID       string            `json:"team_id" yaml:"team_id"`
	Objective    string            `json:"objective" yaml:"objective"`
	Outcome      string            `json:"outcome" yaml:"outcome"`
	Participants []Participant     `json:"participants,omitempty" yaml:"participants,omitempty"`
	Messages     []SessionMessage  `json:"messages,omitempty" yaml:"messages,omitempty"`
	Artifacts    []SessionArtifact `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// Participant is a persona that took part in the session.
type Participant struct {
	PersonaID string `json:"persona_id" yaml:"persona_id"`
	Role      string `json:"role" yaml:"role"`
}

// SessionMessage is one message exchanged during the session. Messages
// tagged "decision" feed the decision sections of generated documents.
type SessionMessage struct {
	PersonaID string   `json:"persona_id,omitempty" yaml:"persona_id,omitempty"`
	Content   string   `json:"content" yaml:"content"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// SessionArtifact is a work product recorded during the session (a sketch,
// a snippet, a decision record). Requirements and scope sections enumerate
// these.
type SessionArtifact struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasTag reports whether the message carries the given tag.
func (m *SessionMessage) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Options tunes a single generation invocation.
type Options struct {
	// TemplateOverrides enables or disables individual document types.
	// A type is excluded only when explicitly set to false; absent or
	// true means include.
	TemplateOverrides map[string]bool `json:"template_overrides,omitempty" yaml:"template_overrides,omitempty"`

	// Publish pushes each generated document to the external wiki and
	// records the returned page URL.
	Publish bool `json:"publish,omitempty" yaml:"publish,omitempty"`

	// IncludeSummary synthesizes a short summary for each document.
	IncludeSummary bool `json:"include_summary,omitempty" yaml:"include_summary,omitempty"`
}

// GenerationRequest is the payload published on the generation-requests
// channel and consumed by the daemon.
type GenerationRequest struct {
	Context SessionContext `json:"context"`
	Options Options        `json:"options"`
}

// Validate checks if the SessionContext has the fields generation requires.
func (c *SessionContext) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}

	if c.TeamID == "" {
		return fmt.Errorf("team_id cannot be empty")
	}

	return nil
}
