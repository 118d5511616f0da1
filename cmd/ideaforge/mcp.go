package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/ideaforge/internal/mcptools"
)

func newMCPCmd(a *app) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio (or HTTP with --http)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := a.mcpServer()
			if httpAddr != "" {
				a.log.Info("mcp listening", "addr", httpAddr, "transport", "http")
				return mcptools.RunHTTP(cmd.Context(), server, httpAddr)
			}
			a.log.Debug("mcp serving", "transport", "stdio")
			return mcptools.RunStdio(cmd.Context(), server)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}

func (a *app) mcpServer() *mcp.Server {
	svc := mcptools.NewIdeaService(a.orch, a.mgr,
		mcptools.WithDefaults(a.cfg.Defaults),
		mcptools.WithLogger(a.log),
	)
	return mcptools.NewMCPServer(svc)
}
