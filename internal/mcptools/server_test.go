package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/workspace"
)

const rawIdea = "A marketplace for renting camera gear between photographers"

func stubGenerator(fail plan.SectionKey) generate.Generator {
	return generate.GeneratorFunc(func(_ context.Context, req generate.Request) (*generate.Result, error) {
		if err := generate.Validate(req); err != nil {
			return nil, err
		}
		if req.Section == fail {
			return nil, &generate.Error{Kind: generate.ErrMalformedJSON, Section: req.Section, Err: errors.New("unexpected end of JSON input")}
		}
		content := `{"summary":"` + string(req.Section) + `"}`
		if req.Section == plan.KeyImplementationPrompts {
			content = `[]`
		}
		return &generate.Result{Section: req.Section, Content: json.RawMessage(content)}, nil
	})
}

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T, fail plan.SectionKey) (*mcp.ClientSession, *workspace.Manager) {
	t.Helper()

	mgr := workspace.NewManager(ideas.NewMemStore(), workspace.WithDebounce(0))
	svc := NewIdeaService(orchestrator.New(stubGenerator(fail)), mgr)
	server := NewMCPServer(svc)

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})
	return session, mgr
}

// callTool calls a tool that must succeed and decodes its structured output.
func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args any) T {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s returned a tool error: %v", name, result.Content)
	require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// callToolError calls a tool that must fail and returns the error text.
func callToolError(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return err.Error()
	}
	require.True(t, result.IsError, "%s should fail", name)
	var sb strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t, "")

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"create_idea",
		"export_idea",
		"generate_all",
		"get_idea",
		"idea_status",
		"list_ideas",
		"list_templates",
		"regenerate_section",
		"set_section_lock",
	}, names)
}

func TestMCPCreateAndList(t *testing.T) {
	session, _ := setupServerClient(t, "")

	idea := callTool[IdeaView](t, session, "create_idea", CreateIdeaInput{
		Name:     "Gear Share",
		RawIdea:  rawIdea,
		TeamSize: "medium",
	})
	assert.NotEmpty(t, idea.ID)
	assert.Equal(t, "medium", idea.Settings.TeamSize)
	assert.Equal(t, plan.DefaultSettings().TechStack, idea.Settings.TechStack)
	require.Len(t, idea.Sections, plan.SectionCount)
	assert.Equal(t, "clarifiedIdea", idea.Sections[0].Key)
	assert.Equal(t, "empty", idea.Sections[0].Status)

	list := callTool[ListIdeasOutput](t, session, "list_ideas", ListIdeasInput{})
	require.Len(t, list.Ideas, 1)
	assert.Equal(t, idea.ID, list.Ideas[0].ID)
	assert.Equal(t, "Gear Share", list.Ideas[0].Name)
}

func TestMCPCreateFromTemplate(t *testing.T) {
	session, _ := setupServerClient(t, "")

	idea := callTool[IdeaView](t, session, "create_idea", CreateIdeaInput{Template: "ai-writing"})
	assert.NotEmpty(t, idea.RawIdea)
	assert.NotEqual(t, plan.DefaultName, idea.Name)

	msg := callToolError(t, session, "create_idea", CreateIdeaInput{RawIdea: rawIdea, Complexity: "galactic"})
	assert.Contains(t, msg, "complexity")
}

func TestMCPGenerateAllAndStatus(t *testing.T) {
	session, _ := setupServerClient(t, plan.KeyCompetitors)
	idea := callTool[IdeaView](t, session, "create_idea", CreateIdeaInput{RawIdea: rawIdea})

	out := callTool[GenerateAllOutput](t, session, "generate_all", IdeaRef{ID: idea.ID})
	assert.Equal(t, []string{"competitors"}, out.Failed)
	assert.Equal(t, []string{"validation"}, out.Skipped)
	assert.Len(t, out.Succeeded, plan.SectionCount-2)
	assert.Contains(t, out.Summary, "6 generated, 1 failed, 1 skipped")
	require.Len(t, out.Sections, plan.SectionCount)
	assert.Equal(t, "dependency failed", out.Sections[plan.KeyValidation.Index()].Reason)

	st := callTool[IdeaStatusOutput](t, session, "idea_status", IdeaRef{ID: idea.ID})
	assert.Equal(t, plan.SectionCount-2, st.Complete)
	assert.Equal(t, "competitors", st.Next)
	assert.Contains(t, st.Table, "6/8 complete")
}

func TestMCPLockAndRegenerate(t *testing.T) {
	session, mgr := setupServerClient(t, "")
	idea := callTool[IdeaView](t, session, "create_idea", CreateIdeaInput{RawIdea: rawIdea})

	locked := callTool[SectionOutput](t, session, "set_section_lock", SetSectionLockInput{ID: idea.ID, Section: "clarify", Locked: true})
	assert.True(t, locked.Section.Locked)
	assert.Equal(t, "clarifiedIdea", locked.Section.Key)

	msg := callToolError(t, session, "regenerate_section", SectionRef{ID: idea.ID, Section: "clarifiedIdea"})
	assert.Contains(t, msg, "locked")

	callTool[SectionOutput](t, session, "set_section_lock", SetSectionLockInput{ID: idea.ID, Section: "clarifiedIdea", Locked: false})
	regen := callTool[SectionOutput](t, session, "regenerate_section", SectionRef{ID: idea.ID, Section: "clarifiedIdea"})
	assert.Equal(t, "generated", regen.Section.Status)
	assert.JSONEq(t, `{"summary":"clarifiedIdea"}`, regen.Section.Content)
	assert.NotEmpty(t, regen.Section.LastGenerated)

	store, err := mgr.Get(context.Background(), idea.ID)
	require.NoError(t, err)
	assert.False(t, store.Dirty(), "regeneration is flushed")
}

func TestMCPExport(t *testing.T) {
	session, _ := setupServerClient(t, "")
	idea := callTool[IdeaView](t, session, "create_idea", CreateIdeaInput{Name: "Gear Share", RawIdea: rawIdea})

	md := callTool[ExportIdeaOutput](t, session, "export_idea", ExportIdeaInput{ID: idea.ID})
	assert.Equal(t, "markdown", md.Format)
	assert.Equal(t, "gear-share.md", md.Filename)
	assert.True(t, strings.HasPrefix(md.Content, "# Gear Share"))

	diagram := callTool[ExportIdeaOutput](t, session, "export_idea", ExportIdeaInput{ID: idea.ID, Format: "mermaid"})
	assert.Contains(t, diagram.Content, "graph TD")

	msg := callToolError(t, session, "export_idea", ExportIdeaInput{ID: idea.ID, Format: "pdf"})
	assert.Contains(t, msg, "unknown format")
}

func TestMCPListTemplates(t *testing.T) {
	session, _ := setupServerClient(t, "")
	out := callTool[ListTemplatesOutput](t, session, "list_templates", ListTemplatesInput{})
	require.Len(t, out.Templates, 8)
	assert.Equal(t, "saas-analytics", out.Templates[0].ID)
}

func TestMCPUnknownIdea(t *testing.T) {
	session, _ := setupServerClient(t, "")
	msg := callToolError(t, session, "get_idea", IdeaRef{ID: "missing"})
	assert.Contains(t, msg, "not found")
}

func TestMCPCallUnknownTool(t *testing.T) {
	session, _ := setupServerClient(t, "")

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError, "calling an unknown tool should set IsError")
}
