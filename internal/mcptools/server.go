// Package mcptools exposes idea management and generation as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with every idea tool registered.
func NewMCPServer(svc *IdeaService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ideaforge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_ideas",
		Description: "List stored product ideas, most recently updated first.",
	}, svc.ListIdeas)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_idea",
		Description: "Create a product idea from free text or a built-in template, with optional generation settings.",
	}, svc.CreateIdea)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_idea",
		Description: "Return a product idea with all eight planning sections. Section content is JSON text.",
	}, svc.GetIdea)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "idea_status",
		Description: "Show which planning sections are complete and which can be generated next.",
	}, svc.IdeaStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_all",
		Description: "Generate every missing planning section in dependency order. Locked sections and sections that already have content are left alone; a failed section skips its dependents.",
	}, svc.GenerateAll)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "regenerate_section",
		Description: "Regenerate one unlocked section from the content of the sections before it. Dependents are not regenerated.",
	}, svc.RegenerateSection)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_section_lock",
		Description: "Lock or unlock a section. Locked sections are never overwritten by generation.",
	}, svc.SetSectionLock)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_idea",
		Description: "Export a product idea as markdown, html, json or a mermaid dependency diagram.",
	}, svc.ExportIdea)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the built-in idea templates.",
	}, svc.ListTemplates)

	return server
}

// RunStdio runs the MCP server on stdio, blocking until stdin is closed or
// ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// done.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
