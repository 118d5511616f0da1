package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Footer closes every full markdown document.
const Footer = "*Generated with ideaforge*"

// Markdown renders the workspace as one markdown document: title, raw idea,
// settings, then every section that holds content, in fixed order.
func Markdown(ws plan.Workspace) (string, error) {
	var parts []string

	name := ws.Name
	if name == "" {
		name = "Product Idea"
	}
	parts = append(parts, "# "+name+"\n")

	if raw := strings.TrimSpace(ws.RawIdea); raw != "" {
		parts = append(parts, "## Original Idea\n\n> "+strings.ReplaceAll(raw, "\n", "\n> ")+"\n")
	}

	s := ws.Settings.WithDefaults()
	parts = append(parts, fmt.Sprintf(
		"## Settings\n\n- **Tech Stack:** %s\n- **Team Size:** %s\n- **Sprint Length:** %d weeks\n- **Complexity:** %s\n",
		s.TechStack, s.TeamSize, s.SprintLength, s.Complexity))

	for _, k := range plan.Keys() {
		sec := ws.Get(k)
		if !sec.HasContent() {
			continue
		}
		body, err := renderSection(k, sec, s)
		if err != nil {
			return "", err
		}
		parts = append(parts, "---\n\n# "+sec.Title+"\n", body)
	}

	parts = append(parts, "\n---\n\n"+Footer)
	return strings.Join(parts, "\n\n"), nil
}

// SectionMarkdown renders a single section under its title. ok is false
// when the section has no content.
func SectionMarkdown(ws plan.Workspace, k plan.SectionKey) (md string, ok bool, err error) {
	if !k.Valid() {
		return "", false, fmt.Errorf("export: unknown section %q", k)
	}
	sec := ws.Get(k)
	if !sec.HasContent() {
		return "", false, nil
	}
	body, err := renderSection(k, sec, ws.Settings.WithDefaults())
	if err != nil {
		return "", false, err
	}
	return "# " + sec.Title + "\n\n" + body, true, nil
}

func renderSection(k plan.SectionKey, sec plan.Section, s plan.Settings) (string, error) {
	v, err := plan.DecodeContent(k, sec.Content)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	switch c := v.(type) {
	case *plan.ClarifiedIdea:
		return clarifiedIdea(c), nil
	case *plan.PRDContent:
		return prd(c), nil
	case *plan.MVPScope:
		return mvpScope(c), nil
	case *plan.CompetitorAnalysis:
		return competitors(c), nil
	case *plan.IdeaValidation:
		return validation(c), nil
	case *plan.Roadmap:
		return roadmap(c), nil
	case *plan.Timeline:
		return timeline(c, s.SprintLength), nil
	case *plan.ImplementationPrompts:
		return implementationPrompts(*c), nil
	default:
		return "", fmt.Errorf("export: no renderer for %s", k)
	}
}

// ---------------------------------------------------------------------------
// Section renderers
// ---------------------------------------------------------------------------

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = strconv.Itoa(i+1) + ". " + it
	}
	return strings.Join(lines, "\n")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func clarifiedIdea(c *plan.ClarifiedIdea) string {
	return fmt.Sprintf(`## Summary

%s

## Problem

%s

## Target Users

%s

## Proposed Solution

%s

## Assumptions

%s

## Open Questions

%s`, c.Summary, c.Problem, c.TargetUsers, c.ProposedSolution, bullets(c.Assumptions), bullets(c.OpenQuestions))
}

func prd(c *plan.PRDContent) string {
	stories := make([]string, len(c.UserStories))
	for i, st := range c.UserStories {
		stories[i] = fmt.Sprintf("### %s\n\n%s\n\n**Acceptance Criteria:**\n%s",
			st.Persona, st.Story, bullets(st.AcceptanceCriteria))
	}
	return fmt.Sprintf(`## Overview

%s

## Objectives

%s

## User Stories

%s

## Functional Requirements

%s

## Non-Functional Requirements

%s

## Out of Scope

%s`, c.Overview, bullets(c.Objectives), strings.Join(stories, "\n\n"),
		bullets(c.FunctionalRequirements), bullets(c.NonFunctionalRequirements), bullets(c.OutOfScope))
}

func feature(f plan.Feature) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s [%s] - %s\n\n%s\n\n**Acceptance Criteria:**\n%s\n",
		f.Title, f.Priority, f.EstimatedEffort, f.Description, bullets(f.AcceptanceCriteria))
	if len(f.Dependencies) > 0 {
		fmt.Fprintf(&sb, "\n**Dependencies:** %s", strings.Join(f.Dependencies, ", "))
	}
	return sb.String()
}

func features(fs []plan.Feature) string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = feature(f)
	}
	return strings.Join(out, "\n\n")
}

func mvpScope(c *plan.MVPScope) string {
	return fmt.Sprintf(`## P0 - Must Have (%d features)

%s

## P1 - Should Have (%d features)

%s

## P2 - Nice to Have (%d features)

%s

## Prioritization Rationale

%s`, len(c.P0Features), features(c.P0Features),
		len(c.P1Features), features(c.P1Features),
		len(c.P2Features), features(c.P2Features),
		c.Rationale)
}

func competitors(c *plan.CompetitorAnalysis) string {
	comps := make([]string, len(c.Competitors))
	for i, cp := range c.Competitors {
		comps[i] = fmt.Sprintf(`### %s

**Website:** [%s](%s)

%s

**Target Audience:** %s

**Key Features:** %s

**Pricing:** %s

**Strengths:**
%s

**Weaknesses:**
%s`, cp.Name, cp.Website, cp.Website, cp.Description, cp.TargetAudience,
			strings.Join(cp.KeyFeatures, ", "), cp.Pricing, bullets(cp.Strengths), bullets(cp.Weaknesses))
	}
	return fmt.Sprintf(`## Existing Competitors (%d)

%s

## Market Gaps

%s

## Differentiation Opportunities

%s

## Your Competitive Advantage

%s`, len(c.Competitors), strings.Join(comps, "\n\n---\n\n"),
		bullets(c.MarketGaps), bullets(c.DifferentiationOpportunities), c.CompetitiveAdvantage)
}

func validation(c *plan.IdeaValidation) string {
	scores := make([]string, len(c.ValidationScores))
	for i, s := range c.ValidationScores {
		scores[i] = fmt.Sprintf("| %s | %s/%s | %s |", s.Category, num(s.Score), num(s.MaxScore), s.Reasoning)
	}
	risks := make([]string, len(c.Risks))
	for i, r := range c.Risks {
		risks[i] = fmt.Sprintf("### %s (%s)\n\n**Mitigation:** %s", r.Risk, r.Severity, r.Mitigation)
	}
	market := make([]string, len(c.MarketData))
	for i, d := range c.MarketData {
		market[i] = fmt.Sprintf("| %s | $%sB | $%sB |", d.Year, num(d.MarketSize), num(d.ProjectedGrowth))
	}
	positioning := make([]string, len(c.CompetitivePositioning))
	for i, p := range c.CompetitivePositioning {
		positioning[i] = fmt.Sprintf("| %s | %s/10 | %s/10 |", p.Dimension, num(p.YourIdea), num(p.MarketAverage))
	}

	return fmt.Sprintf(`## Overall Assessment

**Score:** %s/100
**Verdict:** %s

%s

## Key Metrics

- **Go-to-Market Score:** %s%%
- **Technical Feasibility:** %s%%
- **Market Opportunity:** %s%%

## Validation Breakdown

| Category | Score | Reasoning |
|----------|-------|-----------|
%s

## Strengths

%s

## Weaknesses

%s

## Risks & Mitigations

%s

## Market Growth Projection

| Year | Market Size | Projected Growth |
|------|-------------|------------------|
%s

## Competitive Positioning

| Dimension | Your Idea | Market Average |
|-----------|-----------|----------------|
%s

## Recommendations

%s`, num(c.OverallScore), c.Verdict, c.Summary,
		num(c.GoToMarketScore), num(c.TechnicalFeasibilityScore), num(c.MarketOpportunityScore),
		strings.Join(scores, "\n"), bullets(c.Strengths), bullets(c.Weaknesses),
		strings.Join(risks, "\n\n"), strings.Join(market, "\n"), strings.Join(positioning, "\n"),
		numbered(c.Recommendations))
}

func roadmap(c *plan.Roadmap) string {
	phases := make([]string, len(c.Phases))
	for i, p := range c.Phases {
		phases[i] = fmt.Sprintf("### Phase %d: %s\n\n**Goal:** %s\n\n**Features:** %s\n\n**Deliverable:** %s",
			p.Number, p.Name, p.Goal, strings.Join(p.Features, ", "), p.Deliverable)
	}
	out := strings.Join(phases, "\n\n")
	if len(c.Dependencies) > 0 {
		deps := make([]string, len(c.Dependencies))
		for i, d := range c.Dependencies {
			deps[i] = fmt.Sprintf("- %s → %s: %s", d.From, d.To, d.Reason)
		}
		out += "\n\n## Key Dependencies\n\n" + strings.Join(deps, "\n")
	}
	return out
}

func timeline(c *plan.Timeline, sprintLength int) string {
	milestones := make(map[int]string, len(c.Milestones))
	list := make([]string, len(c.Milestones))
	for i, m := range c.Milestones {
		milestones[m.Sprint] = m.Milestone
		list[i] = fmt.Sprintf("- Sprint %d: %s", m.Sprint, m.Milestone)
	}
	sprints := make([]string, len(c.Sprints))
	for i, sp := range c.Sprints {
		head := fmt.Sprintf("### Sprint %d", sp.Number)
		if m, ok := milestones[sp.Number]; ok {
			head += " - " + m
		}
		sprints[i] = fmt.Sprintf("%s\n\n**Goal:** %s\n\n**Features:** %s\n\n**Deliverables:**\n%s",
			head, sp.Goal, strings.Join(sp.Features, ", "), bullets(sp.Deliverables))
	}
	return fmt.Sprintf("**Total Sprints:** %d (%d-week sprints)\n\n**Milestones:**\n%s\n\n%s",
		c.TotalSprints, sprintLength, strings.Join(list, "\n"), strings.Join(sprints, "\n\n"))
}

func implementationPrompts(fs plan.ImplementationPrompts) string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = fmt.Sprintf("### %s [%s]\n\n```\n%s\n```", f.Title, f.Priority, f.ImplementationPrompt)
	}
	return strings.Join(out, "\n\n")
}
