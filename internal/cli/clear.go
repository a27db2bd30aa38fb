package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/tracker"
)

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase tracked data",
	}
	cmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "confirm the erase")

	confirmed := func(what string) error {
		if !yes {
			return fmt.Errorf("%w: clearing %s cannot be undone, pass --yes", errUsage, what)
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "month",
		Short: "Erase the cells of the current month, keeping its protocols",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			if err := confirmed("the month"); err != nil {
				return err
			}
			if err := t.ClearMonthData(); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Cleared %s\n", t.CurrentMonth())
			return nil
		}),
	}, &cobra.Command{
		Use:   "all",
		Short: "Reset the document to an empty tracker",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			if err := confirmed("all data"); err != nil {
				return err
			}
			if err := t.ClearAllData(); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "All data cleared")
			return nil
		}),
	}, &cobra.Command{
		Use:   "store",
		Short: "Delete the persisted document",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			if err := confirmed("the store"); err != nil {
				return err
			}
			if err := t.Purge(); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Store deleted")
			return nil
		}),
	})
	return cmd
}
