package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/status"
)

// WorkspaceExport is the top-level JSON export structure.
type WorkspaceExport struct {
	ExportedAt string          `json:"exportedAt"`
	Workspace  plan.Workspace  `json:"workspace"`
	Status     status.Summary  `json:"status"`
	Sections   []SectionExport `json:"sections"`
}

// SectionExport is one section in export order with its decoded content.
type SectionExport struct {
	Key           plan.SectionKey   `json:"key"`
	Title         string            `json:"title"`
	Status        plan.Status       `json:"status"`
	DependsOn     []plan.SectionKey `json:"dependsOn,omitempty"`
	LastGenerated string            `json:"lastGenerated,omitempty"`
	Content       json.RawMessage   `json:"content,omitempty"`
}

// ExportWorkspace builds the JSON export of ws stamped at now.
func ExportWorkspace(ws plan.Workspace, now time.Time) *WorkspaceExport {
	out := &WorkspaceExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Workspace:  ws.Clone(),
		Status:     status.Summarize(ws),
	}
	for _, d := range plan.Definitions() {
		sec := ws.Get(d.Key)
		se := SectionExport{
			Key:       d.Key,
			Title:     d.Title,
			Status:    sec.Status,
			DependsOn: d.Requires,
		}
		if sec.HasContent() {
			se.Content = sec.Content
		}
		if !sec.LastGenerated.IsZero() {
			se.LastGenerated = sec.LastGenerated.UTC().Format(time.RFC3339)
		}
		out.Sections = append(out.Sections, se)
	}
	return out
}

// JSON returns the indented JSON export of ws.
func JSON(ws plan.Workspace, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(ExportWorkspace(ws, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode json: %w", err)
	}
	return append(data, '\n'), nil
}
