package mcptools

import (
	"time"

	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK generates JSON schemas from these structs. Outputs carry
// plain strings and numbers; section content travels as JSON text.

// IdeaRef names one stored idea.
type IdeaRef struct {
	ID string `json:"id" jsonschema:"the idea ID"`
}

// SectionRef names one section of one idea.
type SectionRef struct {
	ID      string `json:"id" jsonschema:"the idea ID"`
	Section string `json:"section" jsonschema:"section key (e.g. mvpScope) or endpoint slug (e.g. mvp-scope)"`
}

// ListIdeasInput is the input for the list_ideas tool.
type ListIdeasInput struct{}

// IdeaSummary is one row of list_ideas.
type IdeaSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RawIdea   string `json:"rawIdea"`
	UpdatedAt string `json:"updatedAt"`
}

// ListIdeasOutput is the result of the list_ideas tool.
type ListIdeasOutput struct {
	Ideas []IdeaSummary `json:"ideas"`
}

// CreateIdeaInput is the input for the create_idea tool.
type CreateIdeaInput struct {
	Name         string `json:"name,omitempty" jsonschema:"display name"`
	RawIdea      string `json:"rawIdea,omitempty" jsonschema:"the product idea in free text (at least 10 characters before generating)"`
	Template     string `json:"template,omitempty" jsonschema:"built-in template ID to seed name, idea and tech stack from"`
	TechStack    string `json:"techStack,omitempty" jsonschema:"preferred tech stack"`
	TeamSize     string `json:"teamSize,omitempty" jsonschema:"solo, small, medium or large"`
	SprintLength int    `json:"sprintLength,omitempty" jsonschema:"sprint length in weeks"`
	Complexity   string `json:"complexity,omitempty" jsonschema:"simple, moderate or complex"`
}

// SettingsView mirrors the generation settings.
type SettingsView struct {
	TechStack    string `json:"techStack"`
	TeamSize     string `json:"teamSize"`
	SprintLength int    `json:"sprintLength"`
	Complexity   string `json:"complexity"`
}

// SectionView is one section with its content as JSON text.
type SectionView struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	Locked        bool   `json:"locked"`
	LastGenerated string `json:"lastGenerated,omitempty"`
	Content       string `json:"content,omitempty"`
}

// IdeaView is a full idea.
type IdeaView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	RawIdea  string        `json:"rawIdea"`
	Settings SettingsView  `json:"settings"`
	Sections []SectionView `json:"sections"`
}

// IdeaStatusOutput is the result of the idea_status tool.
type IdeaStatusOutput struct {
	Complete int      `json:"complete"`
	Next     string   `json:"next,omitempty"`
	Runnable []string `json:"runnable"`
	Warnings []string `json:"warnings,omitempty"`
	Table    string   `json:"table"`
}

// GenerateAllOutput is the result of the generate_all tool.
type GenerateAllOutput struct {
	Summary   string           `json:"summary"`
	Succeeded []string         `json:"succeeded"`
	Failed    []string         `json:"failed"`
	Skipped   []string         `json:"skipped"`
	Sections  []SectionOutcome `json:"sections"`
}

// SectionOutcome is one section's result in a generate_all run.
type SectionOutcome struct {
	Section    string `json:"section"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Dependency string `json:"dependency,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SetSectionLockInput is the input for the set_section_lock tool.
type SetSectionLockInput struct {
	ID      string `json:"id" jsonschema:"the idea ID"`
	Section string `json:"section" jsonschema:"section key or slug"`
	Locked  bool   `json:"locked" jsonschema:"true to protect the section from generation"`
}

// SectionOutput wraps a single section.
type SectionOutput struct {
	Section SectionView `json:"section"`
}

// ExportIdeaInput is the input for the export_idea tool.
type ExportIdeaInput struct {
	ID     string `json:"id" jsonschema:"the idea ID"`
	Format string `json:"format,omitempty" jsonschema:"markdown (default), html, json or mermaid"`
}

// ExportIdeaOutput is the result of the export_idea tool.
type ExportIdeaOutput struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ListTemplatesInput is the input for the list_templates tool.
type ListTemplatesInput struct{}

// TemplateView is one built-in template.
type TemplateView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	TechStack   string `json:"techStack"`
}

// ListTemplatesOutput is the result of the list_templates tool.
type ListTemplatesOutput struct {
	Templates []TemplateView `json:"templates"`
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func sectionView(sec plan.Section) SectionView {
	return SectionView{
		Key:           string(sec.Key),
		Title:         sec.Title,
		Status:        string(sec.Status),
		Locked:        sec.Locked,
		LastGenerated: stamp(sec.LastGenerated),
		Content:       string(sec.Content),
	}
}

func ideaView(ws plan.Workspace) IdeaView {
	v := IdeaView{
		ID:      ws.ID,
		Name:    ws.Name,
		RawIdea: ws.RawIdea,
		Settings: SettingsView{
			TechStack:    ws.Settings.TechStack,
			TeamSize:     string(ws.Settings.TeamSize),
			SprintLength: ws.Settings.SprintLength,
			Complexity:   string(ws.Settings.Complexity),
		},
		Sections: make([]SectionView, 0, plan.SectionCount),
	}
	for _, k := range plan.Keys() {
		v.Sections = append(v.Sections, sectionView(ws.Get(k)))
	}
	return v
}

func keyStrings(keys []plan.SectionKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func reportOutput(r *orchestrator.Report) GenerateAllOutput {
	out := GenerateAllOutput{
		Summary:   orchestrator.FormatReport(r),
		Succeeded: keyStrings(r.Succeeded),
		Failed:    keyStrings(r.Failed),
		Skipped:   keyStrings(r.Skipped),
		Sections:  make([]SectionOutcome, 0, len(r.Sections)),
	}
	for _, s := range r.Sections {
		out.Sections = append(out.Sections, SectionOutcome{
			Section:    string(s.Section),
			Outcome:    string(s.Outcome),
			Reason:     string(s.Reason),
			Dependency: string(s.Dependency),
			Error:      s.Error,
		})
	}
	return out
}
