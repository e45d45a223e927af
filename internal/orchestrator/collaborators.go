package orchestrator

import (
	"context"

	"scribe/pkg/docboard"
)

// External collaborator contracts. The engine depends only on these
// interfaces; the YAML config, the wiki HTTP client, and test fakes provide
// the implementations.

// PersonaConfig describes one document-producing persona on a team.
// Configuration order matters: when two personas claim the same document
// type, the first one owns it.
type PersonaConfig struct {
	PersonaID     string
	Role          string
	DocumentTypes []string
}

// TeamDirectory supplies the persona configuration for a team.
type TeamDirectory interface {
	// TeamConfigs returns the team's persona configs in configuration
	// order. An empty slice means the team produces no documents.
	TeamConfigs(ctx context.Context, teamID string) ([]PersonaConfig, error)
}

// TemplateSection is one ordered section of a document template.
type TemplateSection struct {
	ID     string
	Title  string
	Order  int
	Prompt string
}

// Template is the section list and display name for one document type.
type Template struct {
	Name     string
	Sections []TemplateSection
}

// TemplateCatalog resolves document types to templates.
type TemplateCatalog interface {
	// Template returns the template for a document type. Unknown types
	// yield an error wrapping ErrTemplateNotFound.
	Template(ctx context.Context, documentType string) (*Template, error)
}

// PublishResult is the external reference returned by a successful publish.
type PublishResult struct {
	PageID string
	URL    string
}

// WikiPublisher pushes a generated document to the external wiki.
// Optional: an engine constructed without one skips publishing even when
// the caller asks for it.
type WikiPublisher interface {
	Publish(ctx context.Context, doc *docboard.GeneratedDocument) (*PublishResult, error)
}
