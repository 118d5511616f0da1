package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

func newGenerateCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "generate <id>",
		Short: "Generate every missing section in dependency order",
		Long: `Generate every section that has no content yet, in dependency order.

Sections that already have content (generated or edited) are kept and feed
their dependents. Locked sections are left alone. A failed section is marked
as an error and its dependents are skipped for this run; run generate again
to retry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var opts []orchestrator.RunOption
			if !quiet {
				opts = append(opts, orchestrator.OnProgress(func(ev orchestrator.ProgressEvent) {
					if ev.Status == orchestrator.ProgressPending {
						return
					}
					fmt.Fprintln(out, orchestrator.FormatProgress(ev))
				}))
			}

			report, err := a.orch.GenerateAll(cmd.Context(), store, opts...)
			if report != nil {
				fmt.Fprintf(out, "\n%s\n", orchestrator.FormatReport(report))
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%d section(s) failed", len(report.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary")
	return cmd
}

func newRegenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <id> <section>",
		Short: "Regenerate one section from the content before it",
		Long: `Regenerate a single section. Every earlier section that has content is
passed as context. Sections that depend on it are not regenerated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := plan.ParseSectionKey(args[1])
			if err != nil {
				return err
			}
			store, err := a.store(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			title := plan.MustLookup(k).Title
			fmt.Fprintf(cmd.OutOrStdout(), "  ● %s...\n", title)
			if _, err := a.orch.RegenerateOne(cmd.Context(), store, k); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s complete\n", title)
			return nil
		},
	}
}
