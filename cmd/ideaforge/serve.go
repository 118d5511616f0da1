package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/ideaforge/internal/api"
	"github.com/dusk-indust/ideaforge/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, mcpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, and optionally MCP over HTTP",
		Long: `Serve the generation and idea endpoints over HTTP until interrupted.

With --mcp-addr (or mcpAddr in ideaforge.yml) the MCP tools are also served
over streamable HTTP on a second address. Both share one idea store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			if mcpAddr == "" {
				mcpAddr = a.cfg.MCPAddr
			}

			srv := api.NewServer(a.gen, a.orch, a.mgr,
				api.WithLogger(a.log),
				api.WithDefaults(a.cfg.Defaults),
			)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Run(ctx, addr) })
			if mcpAddr != "" {
				g.Go(func() error {
					a.log.Info("mcp listening", "addr", mcpAddr, "transport", "http")
					return mcptools.RunHTTP(ctx, a.mcpServer(), mcpAddr)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :8080)")
	cmd.Flags().StringVar(&mcpAddr, "mcp-addr", "", "also serve MCP over HTTP on this address")
	return cmd
}
