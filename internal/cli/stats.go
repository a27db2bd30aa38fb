package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/engine"
	"github.com/mesh-intelligence/trackora/internal/tracker"
)

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Monthly and weekly analysis",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "monthly",
		Short: "Analyse the month",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			s := t.Monthly()
			if a.flags.jsonMode {
				return printJSON(cmd, s)
			}
			return renderMonthly(cmd, s)
		}),
	}, &cobra.Command{
		Use:   "weekly",
		Short: "Analyse the last seven days",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			s := t.Weekly()
			if a.flags.jsonMode {
				return printJSON(cmd, s)
			}
			return renderWeekly(cmd, s)
		}),
	})
	return cmd
}

func renderMonthly(cmd *cobra.Command, s engine.MonthlySummary) error {
	w := out(cmd)
	fmt.Fprintf(w, "Monthly analysis %s\n", s.Month)
	if s.Protocols == 0 {
		fmt.Fprintln(w, "No protocols added yet.")
		return nil
	}
	fmt.Fprintf(w, "Overall completion: %d%%\n", s.OverallCompletion)
	fmt.Fprintf(w, "Discipline score:   %.1f (%s)\n", s.Score, s.Tier)
	fmt.Fprintf(w, "Best protocol:      %s (%d%%)\n", s.Best.Name, s.Best.Percentage)
	fmt.Fprintf(w, "Most missed:        %s (%d%%)\n", s.Worst.Name, s.Worst.Percentage)
	fmt.Fprintf(w, "Avg sleep:          %.1fh (%d days tracked)\n", s.AverageSleep, s.SleepDaysTracked)
	if s.BestDay.Completed > 0 {
		fmt.Fprintf(w, "Best day:           %s (%d of %d protocols)\n", s.BestDay.Date, s.BestDay.Completed, s.Protocols)
	}
	fmt.Fprintf(w, "Streak:             %d days\n\n", s.Streak)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPROTOCOL\tDONE\tPCT")
	for i, st := range s.Rankings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d%%\n", i+1, st.Name, st.Completed, st.Percentage)
	}
	return tw.Flush()
}

func renderWeekly(cmd *cobra.Command, s engine.WeeklySummary) error {
	w := out(cmd)
	if !s.Available {
		fmt.Fprintln(w, "Weekly analysis is only available for the current month")
		return nil
	}
	best := "-"
	if s.BestDay != nil {
		best = s.BestDay.Weekday.String()[:3]
	}
	fmt.Fprintf(w, "Avg completion: %d%%\n", s.AverageCompletion)
	fmt.Fprintf(w, "Current streak: %d days\n", s.Streak)
	fmt.Fprintf(w, "Avg sleep:      %.1fh\n", s.AverageSleep)
	fmt.Fprintf(w, "Best day:       %s\n\n", best)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tDONE\tSLEEP")
	for _, d := range s.Days {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%.1f\n", d.Date, d.Weekday.String()[:3], d.Percentage, d.SleepHours)
	}
	return tw.Flush()
}

func newScoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Print the discipline score of the month",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			score, tier := t.Score()
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]any{"month": t.CurrentMonth().Key(), "score": score, "tier": tier})
			}
			fmt.Fprintf(out(cmd), "%.1f%% %s\n", score, tier)
			return nil
		}),
	}
}
