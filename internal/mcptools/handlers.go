package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/ideaforge/internal/export"
	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/status"
	"github.com/dusk-indust/ideaforge/internal/templates"
	"github.com/dusk-indust/ideaforge/internal/workspace"
)

// IdeaService handles MCP tool calls against the idea store.
type IdeaService struct {
	orch     *orchestrator.Orchestrator
	ideas    *workspace.Manager
	defaults plan.Settings
	now      func() time.Time
	log      *slog.Logger
}

// ServiceOption configures an IdeaService.
type ServiceOption func(*IdeaService)

// WithDefaults sets the settings of newly created ideas.
func WithDefaults(s plan.Settings) ServiceOption {
	return func(svc *IdeaService) {
		svc.defaults = s.WithDefaults()
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(svc *IdeaService) {
		svc.log = l
	}
}

// NewIdeaService creates an IdeaService.
func NewIdeaService(orch *orchestrator.Orchestrator, m *workspace.Manager, opts ...ServiceOption) *IdeaService {
	svc := &IdeaService{
		orch:     orch,
		ideas:    m,
		defaults: plan.DefaultSettings(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListIdeas lists every stored idea, most recently updated first.
func (s *IdeaService) ListIdeas(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListIdeasInput,
) (*mcp.CallToolResult, ListIdeasOutput, error) {
	list, err := s.ideas.List(ctx)
	if err != nil {
		return nil, ListIdeasOutput{}, err
	}
	out := ListIdeasOutput{Ideas: make([]IdeaSummary, 0, len(list))}
	for _, sum := range list {
		out.Ideas = append(out.Ideas, IdeaSummary{
			ID:        sum.ID,
			Name:      sum.Name,
			RawIdea:   sum.RawIdea,
			UpdatedAt: stamp(sum.UpdatedAt),
		})
	}
	return nil, out, nil
}

// CreateIdea stores a new idea, optionally seeded from a template.
func (s *IdeaService) CreateIdea(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateIdeaInput,
) (*mcp.CallToolResult, IdeaView, error) {
	ws := plan.NewWorkspace(s.now())
	ws.Settings = s.defaults
	if input.Template != "" {
		tpl, err := templates.Get(input.Template)
		if err != nil {
			return nil, IdeaView{}, err
		}
		tpl.Apply(&ws)
	}
	if input.Name != "" {
		ws.Name = input.Name
	}
	if input.RawIdea != "" {
		ws.RawIdea = input.RawIdea
	}

	var patch plan.SettingsPatch
	if input.TechStack != "" {
		patch.TechStack = &input.TechStack
	}
	if input.TeamSize != "" {
		ts := plan.TeamSize(input.TeamSize)
		patch.TeamSize = &ts
	}
	if input.SprintLength != 0 {
		patch.SprintLength = &input.SprintLength
	}
	if input.Complexity != "" {
		c := plan.Complexity(input.Complexity)
		patch.Complexity = &c
	}
	ws.Settings = patch.Apply(ws.Settings)
	if err := ws.Settings.Validate(); err != nil {
		return nil, IdeaView{}, err
	}

	store, err := s.ideas.Create(ctx, ws)
	if err != nil {
		return nil, IdeaView{}, err
	}
	return nil, ideaView(store.Snapshot()), nil
}

// GetIdea returns a full idea with every section's content.
func (s *IdeaService) GetIdea(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IdeaRef,
) (*mcp.CallToolResult, IdeaView, error) {
	store, err := s.ideas.Get(ctx, input.ID)
	if err != nil {
		return nil, IdeaView{}, err
	}
	return nil, ideaView(store.Snapshot()), nil
}

// IdeaStatus reports generation progress and the next runnable section.
func (s *IdeaService) IdeaStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IdeaRef,
) (*mcp.CallToolResult, IdeaStatusOutput, error) {
	store, err := s.ideas.Get(ctx, input.ID)
	if err != nil {
		return nil, IdeaStatusOutput{}, err
	}
	sum := status.Summarize(store.Snapshot())
	out := IdeaStatusOutput{
		Complete: sum.Complete,
		Next:     string(sum.Next),
		Runnable: keyStrings(sum.Runnable),
		Table:    status.Format(sum),
	}
	for _, is := range sum.Issues {
		out.Warnings = append(out.Warnings, is.Description)
	}
	return nil, out, nil
}

// GenerateAll runs the whole pipeline for one idea. Section failures are
// reported in the output, not as a tool error.
func (s *IdeaService) GenerateAll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IdeaRef,
) (*mcp.CallToolResult, GenerateAllOutput, error) {
	store, err := s.ideas.Get(ctx, input.ID)
	if err != nil {
		return nil, GenerateAllOutput{}, err
	}
	report, err := s.orch.GenerateAll(ctx, store)
	if report == nil {
		return nil, GenerateAllOutput{}, err
	}
	if ferr := store.Flush(context.WithoutCancel(ctx)); ferr != nil {
		s.log.Error("save after generation failed", "workspace", store.ID(), "error", ferr)
	}
	return nil, reportOutput(report), err
}

// RegenerateSection regenerates one unlocked section from the content
// currently present before it.
func (s *IdeaService) RegenerateSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SectionRef,
) (*mcp.CallToolResult, SectionOutput, error) {
	store, k, err := s.section(ctx, input.ID, input.Section)
	if err != nil {
		return nil, SectionOutput{}, err
	}
	if _, err := s.orch.RegenerateOne(ctx, store, k); err != nil {
		return nil, SectionOutput{}, err
	}
	if err := store.Flush(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("save after regeneration failed", "workspace", store.ID(), "error", err)
	}
	sec, _ := store.Section(k)
	return nil, SectionOutput{Section: sectionView(sec)}, nil
}

// SetSectionLock locks or unlocks one section.
func (s *IdeaService) SetSectionLock(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetSectionLockInput,
) (*mcp.CallToolResult, SectionOutput, error) {
	store, k, err := s.section(ctx, input.ID, input.Section)
	if err != nil {
		return nil, SectionOutput{}, err
	}
	if err := store.SetSectionLocked(k, input.Locked); err != nil {
		return nil, SectionOutput{}, err
	}
	sec, _ := store.Section(k)
	return nil, SectionOutput{Section: sectionView(sec)}, nil
}

// ExportIdea renders one idea in the requested format.
func (s *IdeaService) ExportIdea(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportIdeaInput,
) (*mcp.CallToolResult, ExportIdeaOutput, error) {
	f, err := export.ParseFormat(input.Format)
	if err != nil {
		return nil, ExportIdeaOutput{}, err
	}
	store, err := s.ideas.Get(ctx, input.ID)
	if err != nil {
		return nil, ExportIdeaOutput{}, err
	}
	ws := store.Snapshot()
	body, err := export.Render(ws, f, s.now())
	if err != nil {
		return nil, ExportIdeaOutput{}, err
	}
	return nil, ExportIdeaOutput{
		Format:   string(f),
		Filename: export.Filename(ws, f),
		Content:  string(body),
	}, nil
}

// ListTemplates lists the built-in idea templates.
func (s *IdeaService) ListTemplates(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListTemplatesInput,
) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	ts, err := templates.List()
	if err != nil {
		return nil, ListTemplatesOutput{}, err
	}
	out := ListTemplatesOutput{Templates: make([]TemplateView, 0, len(ts))}
	for _, t := range ts {
		out.Templates = append(out.Templates, TemplateView{
			ID:          t.ID,
			Name:        t.Name,
			Category:    t.Category,
			Description: t.Description,
			TechStack:   t.TechStack,
		})
	}
	return nil, out, nil
}

func (s *IdeaService) section(ctx context.Context, id, key string) (*workspace.Store, plan.SectionKey, error) {
	k, err := plan.ParseSectionKey(key)
	if err != nil {
		return nil, "", fmt.Errorf("section: %w", err)
	}
	store, err := s.ideas.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return store, k, nil
}
