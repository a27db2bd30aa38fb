package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/engine"
	"github.com/mesh-intelligence/trackora/internal/tracker"
)

// protocolJSON is the JSON shape of a protocol in command output.
type protocolJSON struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	Weight    float64 `json:"weight"`
	Completed int     `json:"completed"`
}

func newProtocolCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "protocol",
		Aliases: []string{"protocols", "p"},
		Short:   "Manage the protocols of a month",
	}
	cmd.AddCommand(
		newProtocolAddCmd(a),
		newProtocolEditCmd(a),
		newProtocolRemoveCmd(a),
		newProtocolListCmd(a),
	)
	return cmd
}

func newProtocolAddCmd(a *app) *cobra.Command {
	var in engine.ProtocolInput
	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add a protocol to the month",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			in.Label = args[0]
			p, err := t.AddProtocol(in)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, protocolJSON{ID: p.ID, Label: p.Label, Color: p.Color, Weight: p.Weight})
			}
			fmt.Fprintf(out(cmd), "Added %s (%s)\n", p.Label, p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Color, "color", "", "display color (default: next palette color)")
	cmd.Flags().Float64Var(&in.Weight, "weight", 1, "importance weight")
	return cmd
}

func newProtocolEditCmd(a *app) *cobra.Command {
	var label, color string
	var weight float64
	cmd := &cobra.Command{
		Use:   "edit <protocol>",
		Short: "Change a protocol's label, color or weight",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			in := engine.ProtocolInput{Label: p.Label, Color: color, Weight: p.Weight}
			if cmd.Flags().Changed("label") {
				in.Label = label
			}
			if cmd.Flags().Changed("weight") {
				in.Weight = weight
			}
			if err := t.EditProtocol(p.ID, in); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated %s\n", p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().StringVar(&color, "color", "", "new display color")
	cmd.Flags().Float64Var(&weight, "weight", 1, "new importance weight")
	return cmd
}

func newProtocolRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <protocol>",
		Aliases: []string{"rm"},
		Short:   "Remove a protocol and its cells from the month",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			if err := t.RemoveProtocol(p.ID); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed %s\n", p.Label)
			return nil
		}),
	}
}

func newProtocolListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the protocols of the month",
		Args:    usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			protocols := t.Protocols()
			if a.flags.jsonMode {
				rows := make([]protocolJSON, 0, len(protocols))
				for _, p := range protocols {
					rows = append(rows, protocolJSON{
						ID:        p.ID,
						Label:     p.Label,
						Color:     p.Color,
						Weight:    p.Weight,
						Completed: t.GetCompletionCount(p.ID),
					})
				}
				return printJSON(cmd, rows)
			}
			if len(protocols) == 0 {
				fmt.Fprintf(out(cmd), "No protocols in %s\n", t.CurrentMonth())
				return nil
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tCOLOR\tDONE")
			for _, p := range protocols {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.ID, p.Label, p.Color, t.GetCompletionCount(p.ID))
			}
			return tw.Flush()
		}),
	}
}
