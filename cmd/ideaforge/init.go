package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/ideaforge/internal/config"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// ideaforgeMCPEntry is the MCP server configuration for the ideaforge binary.
var ideaforgeMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "ideaforge",
  "args": ["mcp"]
}`)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := offline(&cobra.Command{
		Use:   "init",
		Short: "Write a starter ideaforge.yml and register the MCP server in .mcp.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), a.flags.Dir, force)
		},
	})
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	return cmd
}

// runInit writes the starter config and MCP entry into projectRoot.
func runInit(out io.Writer, projectRoot string, force bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}

	if err := writeStarterConfig(out, abs, force); err != nil {
		return err
	}
	if err := mergeMCPConfig(out, filepath.Join(abs, ".mcp.json"), force); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nSetup complete. Set ANTHROPIC_API_KEY and run 'ideaforge new \"<idea>\"'.")
	return nil
}

func writeStarterConfig(out io.Writer, abs string, force bool) error {
	dest := filepath.Join(abs, config.FileNames[0])
	if !force {
		if _, err := os.Stat(dest); err == nil {
			fmt.Fprintf(out, "  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, dest))
			return nil
		}
	}

	starter := config.ProjectConfig{
		Model:        config.DefaultModel,
		DBPath:       DefaultDBDir,
		SaveDebounce: config.DefaultSaveDebounce,
		Defaults:     plan.DefaultSettings(),
	}
	data, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", config.FileNames[0], err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Fprintf(out, "  created %s\n", dotRelative(abs, dest))
	return nil
}

// mergeMCPConfig creates or merges the ideaforge entry into .mcp.json.
func mergeMCPConfig(out io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["ideaforge"]; exists && !force {
		fmt.Fprintln(out, "  skipped .mcp.json ideaforge entry (exists, use --force to overwrite)")
		return nil
	}

	cfg.MCPServers["ideaforge"] = ideaforgeMCPEntry

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(out, "  %s .mcp.json with ideaforge MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
