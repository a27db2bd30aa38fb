package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/tracker"
)

func newMarkCmd(a *app) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "mark <protocol> <day>",
		Short: "Mark a protocol completed on a day",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(args[1])
			if err != nil {
				return err
			}
			if err := t.SetCellValue(day, p.ID, !off); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s: %s\n", p.Label, t.CurrentMonth().Date(day), doneText(!off))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&off, "off", false, "clear the completion instead")
	return cmd
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <protocol> <day>",
		Short: "Flip a protocol's completion on a day",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(args[1])
			if err != nil {
				return err
			}
			done, err := t.ToggleCell(day, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s: %s\n", p.Label, t.CurrentMonth().Date(day), doneText(done))
			return nil
		}),
	}
}

func newFillCmd(a *app) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "fill <protocol> <from> <to>",
		Short: "Mark a protocol on every day of a range",
		Args:  usageArgs(cobra.ExactArgs(3)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			from, err := parseDay(args[1])
			if err != nil {
				return err
			}
			to, err := parseDay(args[2])
			if err != nil {
				return err
			}
			if err := t.FillRange(from, to, p.ID, !off); err != nil {
				return err
			}
			if from > to {
				from, to = to, from
			}
			fmt.Fprintf(out(cmd), "Filled %d cells of %s\n", to-from+1, p.Label)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&off, "off", false, "clear the completions instead")
	return cmd
}

func doneText(done bool) string {
	if done {
		return "done"
	}
	return "not done"
}

func newSleepCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Record or read sleep per day",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <day> <hours>",
		Short: "Record the sleep of a day, e.g. 7.5 or 8hr",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			if err := t.SetSleepHours(day, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Sleep %s: %s\n", t.CurrentMonth().Date(day), args[1])
			return nil
		}),
	}, &cobra.Command{
		Use:   "get <day>",
		Short: "Print the sleep recorded for a day",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			hours, ok := t.GetSleepHours(day)
			if a.flags.jsonMode {
				var v any
				if ok {
					v = hours
				}
				return printJSON(cmd, map[string]any{"date": t.CurrentMonth().Date(day), "hours": v})
			}
			if !ok {
				hours = "-"
			}
			fmt.Fprintln(out(cmd), hours)
			return nil
		}),
	})
	return cmd
}

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Attach or read a protocol's note for a day",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <protocol> <day> <text>",
		Short: "Set the note; empty text clears it",
		Args:  usageArgs(cobra.ExactArgs(3)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(args[1])
			if err != nil {
				return err
			}
			if err := t.SetCellNote(day, p.ID, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Note saved for %s on %s\n", p.Label, t.CurrentMonth().Date(day))
			return nil
		}),
	}, &cobra.Command{
		Use:   "get <protocol> <day>",
		Short: "Print the note",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			p, err := resolveProtocol(t, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(args[1])
			if err != nil {
				return err
			}
			note := t.GetCellNote(day, p.ID)
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{"protocol": p.ID, "date": t.CurrentMonth().Date(day), "note": note})
			}
			fmt.Fprintln(out(cmd), note)
			return nil
		}),
	})
	return cmd
}
