package root

import (
	"github.com/spf13/cobra"

	"github.com/mule-tools/mmc-deploy/common/printer"
)

// newVersionCmd print the version number of mmc-deploy.
// Usage: `mmc-deploy version`.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the current mmc-deploy version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			printer.Infof("mmc-deploy %s\n", AppVersion)
		},
	}
}
