package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribe/internal/orchestrator"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "scribe.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

const validConfig = `version: "1.0"
teams:
  t1:
    personas:
      - id: pm-1
        role: product-manager
        document_types: [prd]
      - id: qa-1
        role: qa-lead
        document_types: [testPlan]
templates:
  prd:
    name: Product Requirements Document
    sections:
      - id: overview
        title: Overview
        order: 1
      - id: requirements
        title: Requirements
        order: 2
  testPlan:
    name: Test Plan
    sections:
      - id: scope
        title: Scope
        order: 1
        prompt: Describe what is in and out of scope.
`

func TestLoad_ValidConfig(t *testing.T) {
	config, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.NotNil(t, config)
	assert.Equal(t, "1.0", config.Version)
	assert.Len(t, config.Teams, 1)
	assert.Len(t, config.Teams["t1"].Personas, 2)
	assert.Equal(t, "product-manager", config.Teams["t1"].Personas[0].Role)
	assert.Equal(t, []string{"prd"}, config.Teams["t1"].Personas[0].DocumentTypes)
	assert.Len(t, config.Templates, 2)

	// Defaults applied
	require.NotNil(t, config.Orchestrator)
	assert.Equal(t, 3, *config.Orchestrator.MaxConcurrentJobs)
	assert.Equal(t, 3, *config.Orchestrator.MaxRetries)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/scribe.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, "version: \"1.0\"\nteams:\n  - broken\n    yaml\n"))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ScribeConfig)
		wantErr string
	}{
		{
			name:    "wrong version",
			mutate:  func(c *ScribeConfig) { c.Version = "2.0" },
			wantErr: "unsupported version",
		},
		{
			name:    "no teams",
			mutate:  func(c *ScribeConfig) { c.Teams = nil },
			wantErr: "no teams defined",
		},
		{
			name: "team without personas",
			mutate: func(c *ScribeConfig) {
				c.Teams["t2"] = Team{}
			},
			wantErr: "at least one persona",
		},
		{
			name: "persona without id",
			mutate: func(c *ScribeConfig) {
				c.Teams["t1"] = Team{Personas: []Persona{{Role: "pm"}}}
			},
			wantErr: "persona id is required",
		},
		{
			name: "persona without role",
			mutate: func(c *ScribeConfig) {
				c.Teams["t1"] = Team{Personas: []Persona{{ID: "pm-1"}}}
			},
			wantErr: "role is required",
		},
		{
			name: "duplicate persona id",
			mutate: func(c *ScribeConfig) {
				c.Teams["t1"] = Team{Personas: []Persona{
					{ID: "pm-1", Role: "pm"},
					{ID: "pm-1", Role: "pm"},
				}}
			},
			wantErr: "duplicate persona id",
		},
		{
			name: "unknown document type",
			mutate: func(c *ScribeConfig) {
				c.Teams["t1"] = Team{Personas: []Persona{
					{ID: "pm-1", Role: "pm", DocumentTypes: []string{"missing"}},
				}}
			},
			wantErr: "unknown document type 'missing'",
		},
		{
			name: "template without name",
			mutate: func(c *ScribeConfig) {
				tmpl := c.Templates["prd"]
				tmpl.Name = ""
				c.Templates["prd"] = tmpl
			},
			wantErr: "name is required",
		},
		{
			name: "template without sections",
			mutate: func(c *ScribeConfig) {
				tmpl := c.Templates["prd"]
				tmpl.Sections = nil
				c.Templates["prd"] = tmpl
			},
			wantErr: "at least one section",
		},
		{
			name: "duplicate section id",
			mutate: func(c *ScribeConfig) {
				tmpl := c.Templates["prd"]
				tmpl.Sections = append(tmpl.Sections, SectionConfig{ID: "overview", Title: "Again", Order: 9})
				c.Templates["prd"] = tmpl
			},
			wantErr: "duplicate section id",
		},
		{
			name: "bad concurrency",
			mutate: func(c *ScribeConfig) {
				zero := 0
				c.Orchestrator = &OrchestratorConfig{MaxConcurrentJobs: &zero}
			},
			wantErr: "max_concurrent_jobs must be >= 1",
		},
		{
			name: "wiki without base url",
			mutate: func(c *ScribeConfig) {
				c.Wiki = &WikiConfig{SpaceKey: "ENG"}
			},
			wantErr: "wiki.base_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := Load(writeConfig(t, validConfig))
			require.NoError(t, err)

			tt.mutate(config)
			err = config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDirectory_TeamConfigs(t *testing.T) {
	config, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	directory := NewDirectory(config)
	personas, err := directory.TeamConfigs(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, personas, 2)
	assert.Equal(t, "pm-1", personas[0].PersonaID)
	assert.Equal(t, []string{"prd"}, personas[0].DocumentTypes)

	// Unknown teams yield nothing rather than an error
	personas, err = directory.TeamConfigs(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, personas)
}

func TestCatalog_Template(t *testing.T) {
	config, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	catalog := NewCatalog(config)
	tmpl, err := catalog.Template(context.Background(), "prd")
	require.NoError(t, err)
	assert.Equal(t, "Product Requirements Document", tmpl.Name)
	require.Len(t, tmpl.Sections, 2)
	assert.Equal(t, "overview", tmpl.Sections[0].ID)
	assert.Equal(t, 1, tmpl.Sections[0].Order)

	_, err = catalog.Template(context.Background(), "missing")
	assert.ErrorIs(t, err, orchestrator.ErrTemplateNotFound)
}
