package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/pkg/trackora"
)

const modulePath = "github.com/mesh-intelligence/trackora"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the trackora version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out(cmd), "trackora v%s\nmodule: %s\n", trackora.Version, modulePath)
			return nil
		},
	}
}
