package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/ideaforge/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export an idea as markdown, html, json or mermaid",
		Long: `Export an idea. Without --output the document goes to stdout; with
--output pointing at a directory, the file is named after the idea.

Examples:
  ideaforge export 3f2a --format html -o docs/
  ideaforge export 3f2a --format json > idea.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return runExport(cmd, a, args[0], f, output)
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "markdown, html, json or mermaid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write to")
	return cmd
}

func newDiagramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diagram <id>",
		Short: "Print the section dependency graph as a Mermaid diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, a, args[0], export.FormatMermaid, "")
		},
	}
}

func runExport(cmd *cobra.Command, a *app, ref string, f export.Format, output string) error {
	store, err := a.store(cmd.Context(), ref)
	if err != nil {
		return err
	}
	ws := store.Snapshot()
	data, err := export.Render(ws, f, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, export.Filename(ws, f))
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
	return nil
}
