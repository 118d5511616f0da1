package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/ideaforge/internal/export"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/templates"
)

type newIdeaFlags struct {
	Name         string
	Template     string
	TechStack    string
	TeamSize     string
	SprintLength int
	Complexity   string
}

func newIdeaCmd(a *app) *cobra.Command {
	var f newIdeaFlags
	cmd := &cobra.Command{
		Use:   "new [idea text]",
		Short: "Create a new idea",
		Long: `Create a new idea from free text or a built-in template.

Examples:
  ideaforge new "A marketplace for renting camera gear between photographers"
  ideaforge new --template booking-system --team-size solo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws := plan.NewWorkspace(time.Now().UTC())
			ws.Settings = a.cfg.Defaults
			if f.Template != "" {
				tpl, err := templates.Get(f.Template)
				if err != nil {
					return err
				}
				tpl.Apply(&ws)
			}
			if len(args) == 1 {
				ws.RawIdea = args[0]
			}
			if f.Name != "" {
				ws.Name = f.Name
			}
			if ws.RawIdea == "" {
				return fmt.Errorf("provide the idea text or --template")
			}

			flags := cmd.Flags()
			var patch plan.SettingsPatch
			if flags.Changed("tech-stack") {
				patch.TechStack = &f.TechStack
			}
			if flags.Changed("team-size") {
				ts := plan.TeamSize(f.TeamSize)
				patch.TeamSize = &ts
			}
			if flags.Changed("sprint-length") {
				patch.SprintLength = &f.SprintLength
			}
			if flags.Changed("complexity") {
				c := plan.Complexity(f.Complexity)
				patch.Complexity = &c
			}
			ws.Settings = patch.Apply(ws.Settings)
			if err := ws.Settings.Validate(); err != nil {
				return err
			}

			store, err := a.mgr.Create(cmd.Context(), ws)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", ws.Name, store.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "display name")
	cmd.Flags().StringVar(&f.Template, "template", "", "seed from a built-in template (see 'ideaforge templates')")
	cmd.Flags().StringVar(&f.TechStack, "tech-stack", "", "preferred tech stack")
	cmd.Flags().StringVar(&f.TeamSize, "team-size", "", "solo, small, medium or large")
	cmd.Flags().IntVar(&f.SprintLength, "sprint-length", 0, "sprint length in weeks")
	cmd.Flags().StringVar(&f.Complexity, "complexity", "", "simple, moderate or complex")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored ideas",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ideas yet.")
				fmt.Fprintln(cmd.OutOrStdout(), "Run 'ideaforge new \"<idea>\"' to start one.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
			for _, s := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var (
		section string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an idea as markdown, or one section of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ws := store.Snapshot()

			if section == "" {
				if asJSON {
					return writeJSON(cmd, ws)
				}
				md, err := export.Markdown(ws)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}

			k, err := plan.ParseSectionKey(section)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, ws.Get(k))
			}
			md, ok, err := export.SectionMarkdown(ws, k)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no content (%s).\n", plan.MustLookup(k).Title, ws.Get(k).Status)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "show only this section (key or slug)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an idea",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			id := store.ID()
			if err := a.mgr.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit <id> <section>",
		Short: "Replace a section's content with hand-written JSON",
		Long: `Replace a section's content with JSON read from --file (or stdin with "-").
The section is marked edited and counts as present for later generation runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := plan.ParseSectionKey(args[1])
			if err != nil {
				return err
			}
			var data []byte
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			if _, err := plan.DecodeContent(k, data); err != nil {
				return err
			}
			store, err := a.store(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := store.EditSectionContent(k, json.RawMessage(data)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", plan.MustLookup(k).Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file, or - for stdin")
	return cmd
}

func newLockCmd(a *app, lock bool) *cobra.Command {
	use, short, verb := "lock", "Protect sections from generation", "Locked"
	if !lock {
		use, short, verb = "unlock", "Allow generation to overwrite sections again", "Unlocked"
	}
	return &cobra.Command{
		Use:   use + " <id> <section>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, s := range args[1:] {
				k, err := plan.ParseSectionKey(s)
				if err != nil {
					return err
				}
				if err := store.SetSectionLocked(k, lock); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, plan.MustLookup(k).Title)
			}
			return nil
		},
	}
}

func newTemplatesCmd() *cobra.Command {
	return offline(&cobra.Command{
		Use:   "templates",
		Short: "List the built-in idea templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := templates.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tNAME\tSTACK")
			for _, t := range ts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Category, t.Name, t.TechStack)
			}
			return tw.Flush()
		},
	})
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
