package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ideaforge",
		Short: "Turn a product idea into a complete planning document",
		Long: `ideaforge expands a one-line product idea into eight planning sections:
clarified idea, PRD, MVP scope, competitor analysis, idea validation,
implementation roadmap, delivery timeline and implementation prompts.

Sections are generated in dependency order. Locked sections are never
overwritten, and a failed section skips everything that depends on it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skipOpen"] == "true" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.Dir, "dir", ".", "directory holding ideaforge.yml and the default database")
	pf.StringVar(&a.flags.DBPath, "db", "", "KuzuDB directory (overrides config)")
	pf.BoolVar(&a.flags.Memory, "memory", false, "keep ideas in memory only")
	pf.StringVar(&a.flags.Server, "server", "", "generate through a running ideaforge server at this URL")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&a.flags.Parallel, "parallel", false, "generate independent sections concurrently")

	root.AddCommand(
		newInitCmd(a),
		newIdeaCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newGenerateCmd(a),
		newRegenerateCmd(a),
		newLockCmd(a, true),
		newLockCmd(a, false),
		newEditCmd(a),
		newStatusCmd(a),
		newExportCmd(a),
		newDiagramCmd(a),
		newTemplatesCmd(),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return root
}

// offline marks a command that needs no config or storage.
func offline(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["skipOpen"] = "true"
	return cmd
}

func newVersionCmd() *cobra.Command {
	return offline(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
}
