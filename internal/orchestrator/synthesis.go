package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"scribe/pkg/docboard"
)

// Content synthesis for one document type. Sections are rendered with
// type-specific heuristics keyed off the section's identity:
//
//   - overview/context sections summarize the session's objective and outcome
//   - requirements/scope sections enumerate the session's artifacts
//   - decision sections collect the messages tagged "decision"
//   - everything else gets a generic placeholder derived from the prompt

// decisionTag marks session messages that feed decision sections.
const decisionTag = "decision"

// renderDocument produces the full markdown content for a template, with
// sections in ascending order. Returns the document title and content.
func renderDocument(tmpl *Template, sctx *docboard.SessionContext) (string, string) {
	sections := make([]TemplateSection, len(tmpl.Sections))
	copy(sections, tmpl.Sections)
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	title := tmpl.Name

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	for _, section := range sections {
		fmt.Fprintf(&sb, "## %s\n\n", section.Title)
		sb.WriteString(renderSection(section, sctx))
		sb.WriteString("\n\n")
	}

	return title, strings.TrimRight(sb.String(), "\n") + "\n"
}

// renderSection applies the per-kind heuristic for a single section.
func renderSection(section TemplateSection, sctx *docboard.SessionContext) string {
	switch {
	case matchesKind(section, "overview", "context", "summary", "background", "goal"):
		return renderOverview(sctx)

	case matchesKind(section, "requirement", "scope", "deliverable"):
		return renderArtifactList(sctx)

	case matchesKind(section, "decision"):
		return renderDecisions(sctx)

	default:
		return renderPlaceholder(section)
	}
}

// matchesKind checks the section's id and title for any of the keywords.
func matchesKind(section TemplateSection, keywords ...string) bool {
	id := strings.ToLower(section.ID)
	title := strings.ToLower(section.Title)
	for _, keyword := range keywords {
		if strings.Contains(id, keyword) || strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func renderOverview(sctx *docboard.SessionContext) string {
	var sb strings.Builder
	if sctx.Objective != "" {
		fmt.Fprintf(&sb, "**Objective:** %s\n\n", sctx.Objective)
	}
	if sctx.Outcome != "" {
		fmt.Fprintf(&sb, "**Outcome:** %s\n\n", sctx.Outcome)
	}
	if len(sctx.Participants) > 0 {
		roles := make([]string, 0, len(sctx.Participants))
		for _, p := range sctx.Participants {
			roles = append(roles, p.Role)
		}
		fmt.Fprintf(&sb, "The session involved %d participants (%s) and produced %d artifacts over %d messages.",
			len(sctx.Participants), strings.Join(roles, ", "), len(sctx.Artifacts), len(sctx.Messages))
	}

	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return "_No session summary available._"
	}
	return out
}

func renderArtifactList(sctx *docboard.SessionContext) string {
	if len(sctx.Artifacts) == 0 {
		return "_No artifacts were recorded during this session._"
	}

	var sb strings.Builder
	for _, artifact := range sctx.Artifacts {
		line := fmt.Sprintf("- **%s**", artifact.Name)
		if artifact.Type != "" {
			line += fmt.Sprintf(" (%s)", artifact.Type)
		}
		if artifact.Description != "" {
			line += ": " + artifact.Description
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderDecisions(sctx *docboard.SessionContext) string {
	var decisions []string
	for i := range sctx.Messages {
		if sctx.Messages[i].HasTag(decisionTag) {
			decisions = append(decisions, sctx.Messages[i].Content)
		}
	}

	if len(decisions) == 0 {
		return "_No decisions were tagged during this session._"
	}

	var sb strings.Builder
	for i, decision := range decisions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, decision)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderPlaceholder(section TemplateSection) string {
	prompt := strings.TrimSpace(section.Prompt)
	if prompt == "" {
		return fmt.Sprintf("_Content for %s pending._", section.Title)
	}
	return fmt.Sprintf("_%s_\n\nContent pending for this section.", prompt)
}

// renderSummary builds a one-line summary from the template's section
// headings, in section order.
func renderSummary(tmpl *Template) string {
	sections := make([]TemplateSection, len(tmpl.Sections))
	copy(sections, tmpl.Sections)
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	headings := make([]string, 0, len(sections))
	for _, section := range sections {
		headings = append(headings, section.Title)
	}
	return fmt.Sprintf("%s covering %s.", tmpl.Name, strings.Join(headings, ", "))
}
