package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/tracker"
)

// profileJSON is the JSON shape of a profile in listings.
type profileJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Months int    `json:"months"`
	Active bool   `json:"active"`
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> [name]",
		Short: "Create an empty profile",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			if err := t.AddProfile(args[0], name); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Added profile %s\n", args[0])
			return nil
		}),
	}, &cobra.Command{
		Use:   "use <id>",
		Short: "Switch the active profile",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			if err := t.UseProfile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Using profile %s\n", args[0])
			return nil
		}),
	}, &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			active := t.ActiveProfile().ID
			rows := []profileJSON{}
			for _, p := range t.Profiles() {
				rows = append(rows, profileJSON{ID: p.ID, Name: p.Name, Months: len(p.Months), Active: p.ID == active})
			}
			if a.flags.jsonMode {
				return printJSON(cmd, rows)
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tMONTHS")
			for _, r := range rows {
				mark := ""
				if r.Active {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", mark, r.ID, r.Name, r.Months)
			}
			return tw.Flush()
		}),
	})
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [name]",
		Short: "Print or set the display theme",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			if len(args) == 1 {
				if err := t.SetTheme(args[0]); err != nil {
					return err
				}
			}
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{"theme": t.Theme()})
			}
			fmt.Fprintln(out(cmd), t.Theme())
			return nil
		}),
	}
}
