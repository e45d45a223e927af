package config

import (
	"context"
	"fmt"

	"scribe/internal/orchestrator"
)

// Adapters exposing the static YAML configuration through the engine's
// collaborator interfaces.

// Directory serves persona configurations from a loaded ScribeConfig.
type Directory struct {
	cfg *ScribeConfig
}

// NewDirectory creates a TeamDirectory backed by the configuration.
func NewDirectory(cfg *ScribeConfig) *Directory {
	return &Directory{cfg: cfg}
}

// TeamConfigs returns the team's personas in configuration order.
// Unknown teams yield an empty slice, not an error.
func (d *Directory) TeamConfigs(ctx context.Context, teamID string) ([]orchestrator.PersonaConfig, error) {
	team, ok := d.cfg.Teams[teamID]
	if !ok {
		return nil, nil
	}

	personas := make([]orchestrator.PersonaConfig, 0, len(team.Personas))
	for _, persona := range team.Personas {
		personas = append(personas, orchestrator.PersonaConfig{
			PersonaID:     persona.ID,
			Role:          persona.Role,
			DocumentTypes: append([]string(nil), persona.DocumentTypes...),
		})
	}
	return personas, nil
}

// Catalog serves document templates from a loaded ScribeConfig.
type Catalog struct {
	cfg *ScribeConfig
}

// NewCatalog creates a TemplateCatalog backed by the configuration.
func NewCatalog(cfg *ScribeConfig) *Catalog {
	return &Catalog{cfg: cfg}
}

// Template returns the template for a document type.
func (c *Catalog) Template(ctx context.Context, docType string) (*orchestrator.Template, error) {
	tmpl, ok := c.cfg.Templates[docType]
	if !ok {
		return nil, fmt.Errorf("document type %q: %w", docType, orchestrator.ErrTemplateNotFound)
	}

	sections := make([]orchestrator.TemplateSection, 0, len(tmpl.Sections))
	for _, section := range tmpl.Sections {
		sections = append(sections, orchestrator.TemplateSection{
			ID:     section.ID,
			Title:  section.Title,
			Order:  section.Order,
			Prompt: section.Prompt,
		})
	}

	return &orchestrator.Template{
		Name:     tmpl.Name,
		Sections: sections,
	}, nil
}
