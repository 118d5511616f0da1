package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/ideaforge/internal/status"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [id]",
		Short: "Show which sections are complete and what runs next",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return printSingleStatus(cmd, a, args[0])
			}
			return printAllStatuses(cmd, a)
		},
	}
}

func printSingleStatus(cmd *cobra.Command, a *app, ref string) error {
	store, err := a.store(cmd.Context(), ref)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), status.Format(status.Summarize(store.Snapshot())))
	return nil
}

func printAllStatuses(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	list, err := a.mgr.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No ideas found.")
		fmt.Fprintln(out, "Run 'ideaforge new \"<idea>\"' to start one.")
		return nil
	}
	for i, sum := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printSingleStatus(cmd, a, sum.ID); err != nil {
			return err
		}
	}
	return nil
}
