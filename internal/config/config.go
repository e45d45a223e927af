package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OrchestratorConfig specifies generation engine settings
type OrchestratorConfig struct {
	MaxConcurrentJobs *int `yaml:"max_concurrent_jobs,omitempty"` // How many generation jobs may run at once (default = 3)
	MaxRetries        *int `yaml:"max_retries,omitempty"`         // Retry ceiling per generation lineage (default = 3)
}

// ScribeConfig represents the top-level scribe.yml configuration
type ScribeConfig struct {
	Version      string                    `yaml:"version"`
	Orchestrator *OrchestratorConfig       `yaml:"orchestrator,omitempty"`
	Teams        map[string]Team           `yaml:"teams"`
	Templates    map[string]TemplateConfig `yaml:"templates"`
	Wiki         *WikiConfig               `yaml:"wiki,omitempty"`
}

// Team represents a single team's persona configuration
type Team struct {
	Personas []Persona `yaml:"personas"`
}

// Persona represents one persona within a team and the document types
// its configuration produces
type Persona struct {
	ID            string   `yaml:"id"`
	Role          string   `yaml:"role"`
	DocumentTypes []string `yaml:"document_types,omitempty"`
}

// TemplateConfig represents a document template definition
type TemplateConfig struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig represents a single template section
type SectionConfig struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Order  int    `yaml:"order"`
	Prompt string `yaml:"prompt,omitempty"`
}

// WikiConfig specifies the external wiki publish target
type WikiConfig struct {
	BaseURL  string `yaml:"base_url"`
	SpaceKey string `yaml:"space_key,omitempty"`
	Token    string `yaml:"token,omitempty"` // Overridden by SCRIBE_WIKI_TOKEN when set
}

// Validate performs strict validation on the configuration
func (c *ScribeConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: at least one team
	if len(c.Teams) == 0 {
		return fmt.Errorf("no teams defined")
	}

	// Validate each template
	for docType, tmpl := range c.Templates {
		if err := tmpl.Validate(docType); err != nil {
			return err
		}
	}

	// Validate each team, including that referenced document types have
	// a template definition
	for teamID, team := range c.Teams {
		if err := team.Validate(teamID, c.Templates); err != nil {
			return err
		}
	}

	// Apply default orchestrator config if missing
	if c.Orchestrator == nil {
		c.Orchestrator = &OrchestratorConfig{}
	}
	if c.Orchestrator.MaxConcurrentJobs == nil {
		defaultJobs := 3
		c.Orchestrator.MaxConcurrentJobs = &defaultJobs
	}
	if c.Orchestrator.MaxRetries == nil {
		defaultRetries := 3
		c.Orchestrator.MaxRetries = &defaultRetries
	}

	if *c.Orchestrator.MaxConcurrentJobs < 1 {
		return fmt.Errorf("orchestrator.max_concurrent_jobs must be >= 1, got %d", *c.Orchestrator.MaxConcurrentJobs)
	}
	if *c.Orchestrator.MaxRetries < 0 {
		return fmt.Errorf("orchestrator.max_retries must be >= 0, got %d", *c.Orchestrator.MaxRetries)
	}

	if c.Wiki != nil && c.Wiki.BaseURL == "" {
		return fmt.Errorf("wiki.base_url is required when the wiki section is present")
	}

	return nil
}

// Validate performs validation on a single team configuration
func (t *Team) Validate(teamID string, templates map[string]TemplateConfig) error {
	if len(t.Personas) == 0 {
		return fmt.Errorf("team '%s': at least one persona is required", teamID)
	}

	idsSeen := make(map[string]bool)
	for _, persona := range t.Personas {
		if persona.ID == "" {
			return fmt.Errorf("team '%s': persona id is required", teamID)
		}
		if persona.Role == "" {
			return fmt.Errorf("team '%s': persona '%s': role is required", teamID, persona.ID)
		}
		if idsSeen[persona.ID] {
			return fmt.Errorf("team '%s': duplicate persona id '%s'", teamID, persona.ID)
		}
		idsSeen[persona.ID] = true

		for _, docType := range persona.DocumentTypes {
			if _, ok := templates[docType]; !ok {
				return fmt.Errorf("team '%s': persona '%s': unknown document type '%s' (no template defined)",
					teamID, persona.ID, docType)
			}
		}
	}

	return nil
}

// Validate performs validation on a single template definition
func (t *TemplateConfig) Validate(docType string) error {
	if t.Name == "" {
		return fmt.Errorf("template '%s': name is required", docType)
	}
	if len(t.Sections) == 0 {
		return fmt.Errorf("template '%s': at least one section is required", docType)
	}

	idsSeen := make(map[string]bool)
	for _, section := range t.Sections {
		if section.ID == "" {
			return fmt.Errorf("template '%s': section id is required", docType)
		}
		if section.Title == "" {
			return fmt.Errorf("template '%s': section '%s': title is required", docType, section.ID)
		}
		if idsSeen[section.ID] {
			return fmt.Errorf("template '%s': duplicate section id '%s'", docType, section.ID)
		}
		idsSeen[section.ID] = true
	}

	return nil
}

// Load reads and validates scribe.yml from the specified path
func Load(path string) (*ScribeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config ScribeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
