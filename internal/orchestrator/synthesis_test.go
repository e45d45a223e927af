package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"scribe/pkg/docboard"
)

func synthSessionContext() *docboard.SessionContext {
	return &docboard.SessionContext{
		SessionID: "s1",
		TeamID:    "t1",
		Objective: "Ship the billing revamp",
		Outcome:   "Scoped to invoicing only",
		Participants: []docboard.Participant{
			{PersonaID: "pm-1", Role: "product-manager"},
		},
		Messages: []docboard.SessionMessage{
			{PersonaID: "pm-1", Content: "Invoices are generated nightly.", Tags: []string{"decision"}},
			{PersonaID: "pm-1", Content: "Let's revisit dunning later."},
			{PersonaID: "pm-1", Content: "Currency stays USD only.", Tags: []string{"decision"}},
		},
		Artifacts: []docboard.SessionArtifact{
			{Name: "billing-flow", Type: "diagram", Description: "End to end invoice flow"},
			{Name: "pricing-table"},
		},
	}
}

func TestRenderSection_Overview(t *testing.T) {
	sctx := synthSessionContext()
	out := renderSection(TemplateSection{ID: "overview", Title: "Overview"}, sctx)

	assert.Contains(t, out, "Ship the billing revamp")
	assert.Contains(t, out, "Scoped to invoicing only")
	assert.Contains(t, out, "1 participants (product-manager)")
	assert.Contains(t, out, "2 artifacts")

	// Title keywords match too, independent of the section ID.
	out = renderSection(TemplateSection{ID: "s1", Title: "Background and Context"}, sctx)
	assert.Contains(t, out, "Ship the billing revamp")

	empty := renderSection(TemplateSection{ID: "overview", Title: "Overview"}, &docboard.SessionContext{})
	assert.Contains(t, empty, "No session summary")
}

func TestRenderSection_Artifacts(t *testing.T) {
	sctx := synthSessionContext()
	out := renderSection(TemplateSection{ID: "requirements", Title: "Requirements"}, sctx)

	assert.Contains(t, out, "**billing-flow** (diagram): End to end invoice flow")
	assert.Contains(t, out, "**pricing-table**")
	assert.NotContains(t, out, "pricing-table** (")

	sctx.Artifacts = nil
	out = renderSection(TemplateSection{ID: "scope", Title: "Scope"}, sctx)
	assert.Contains(t, out, "No artifacts")
}

func TestRenderSection_Decisions(t *testing.T) {
	sctx := synthSessionContext()
	out := renderSection(TemplateSection{ID: "decisions", Title: "Key Decisions"}, sctx)

	assert.Contains(t, out, "1. Invoices are generated nightly.")
	assert.Contains(t, out, "2. Currency stays USD only.")
	assert.NotContains(t, out, "dunning")

	sctx.Messages = nil
	out = renderSection(TemplateSection{ID: "decisions", Title: "Key Decisions"}, sctx)
	assert.Contains(t, out, "No decisions")
}

func TestRenderSection_Placeholder(t *testing.T) {
	sctx := synthSessionContext()

	out := renderSection(TemplateSection{ID: "risks", Title: "Risks", Prompt: "List the known risks."}, sctx)
	assert.Contains(t, out, "List the known risks.")
	assert.Contains(t, out, "Content pending")

	out = renderSection(TemplateSection{ID: "risks", Title: "Risks"}, sctx)
	assert.Contains(t, out, "Content for Risks pending")
}

func TestRenderDocument(t *testing.T) {
	tmpl := &Template{
		Name: "Product Requirements Document",
		Sections: []TemplateSection{
			{ID: "decisions", Title: "Key Decisions", Order: 3},
			{ID: "overview", Title: "Overview", Order: 1},
			{ID: "requirements", Title: "Requirements", Order: 2},
		},
	}

	title, content := renderDocument(tmpl, synthSessionContext())
	assert.Equal(t, "Product Requirements Document", title)
	assert.True(t, strings.HasPrefix(content, "# Product Requirements Document\n"))

	// Sections render in ascending order regardless of slice order.
	overviewAt := strings.Index(content, "## Overview")
	requirementsAt := strings.Index(content, "## Requirements")
	decisionsAt := strings.Index(content, "## Key Decisions")
	assert.Greater(t, overviewAt, 0)
	assert.Greater(t, requirementsAt, overviewAt)
	assert.Greater(t, decisionsAt, requirementsAt)
	assert.True(t, strings.HasSuffix(content, "\n"))
}

func TestRenderSummary(t *testing.T) {
	tmpl := &Template{
		Name: "Test Plan",
		Sections: []TemplateSection{
			{Title: "Cases", Order: 2},
			{Title: "Scope", Order: 1},
		},
	}

	assert.Equal(t, "Test Plan covering Scope, Cases.", renderSummary(tmpl))
}
