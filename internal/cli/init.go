package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/paths"
	"github.com/mesh-intelligence/trackora/internal/tracker"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize trackora storage",
		Long:  "Create the configuration and data directories, then write an empty tracker document for the current month.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: a.trackerRunE(func(cmd *cobra.Command, args []string, t *tracker.Tracker) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}
			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Trackora initialized (%s backend)\nconfig: %s\ndata:   %s\n",
				cfg.Backend, paths.ConfigFile(configDir), cfg.DataDir)
			return nil
		}),
	}
}
