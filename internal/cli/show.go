package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/engine"
	"github.com/mesh-intelligence/trackora/internal/tracker"
)

// gridRow is one protocol of the month grid in JSON output.
type gridRow struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Days  []bool         `json:"days"`
	Notes map[int]string `json:"notes,omitempty"`
}

// gridJSON is the JSON shape of the month grid.
type gridJSON struct {
	Month     string         `json:"month"`
	Protocols []gridRow      `json:"protocols"`
	Sleep     map[int]string `json:"sleep"`
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the month grid",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			month := t.CurrentMonth()
			days := month.Days()
			protocols := t.Protocols()

			grid := gridJSON{Month: month.Key(), Protocols: []gridRow{}, Sleep: map[int]string{}}
			for _, p := range protocols {
				row := gridRow{ID: p.ID, Label: p.Label, Days: make([]bool, days)}
				for d := 1; d <= days; d++ {
					row.Days[d-1] = t.GetCellValue(d, p.ID)
					if note := t.GetCellNote(d, p.ID); note != "" {
						if row.Notes == nil {
							row.Notes = map[int]string{}
						}
						row.Notes[d] = note
					}
				}
				grid.Protocols = append(grid.Protocols, row)
			}
			for d := 1; d <= days; d++ {
				if hours, ok := t.GetSleepHours(d); ok && hours != "" {
					grid.Sleep[d] = hours
				}
			}

			if a.flags.jsonMode {
				return printJSON(cmd, grid)
			}
			return renderGrid(cmd, grid, t)
		}),
	}
}

func renderGrid(cmd *cobra.Command, grid gridJSON, t *tracker.Tracker) error {
	score, tier := t.Score()
	fmt.Fprintf(out(cmd), "%s  discipline %.1f%% (%s)  streak %d\n\n", grid.Month, score, tier, t.Streak())

	days := t.CurrentMonth().Days()
	var header strings.Builder
	for d := 1; d <= days; d++ {
		header.WriteString(strconv.Itoa(d % 10))
	}

	tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PROTOCOL\t%s\tDONE\n", header.String())
	for _, row := range grid.Protocols {
		var cells strings.Builder
		done := 0
		for _, v := range row.Days {
			if v {
				cells.WriteByte('x')
				done++
			} else {
				cells.WriteByte('.')
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", engine.DisplayName(row.Label), cells.String(), done)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(grid.Sleep) > 0 {
		fmt.Fprintln(out(cmd))
		for d := 1; d <= days; d++ {
			if hours, ok := grid.Sleep[d]; ok {
				fmt.Fprintf(out(cmd), "sleep %s  %s\n", t.CurrentMonth().Date(d), hours)
			}
		}
	}
	return nil
}
