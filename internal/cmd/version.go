package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/ui"
	"github.com/cameronsjo/conductor/internal/update"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ui.Plain("conductor version %s", version)
		ui.Plain("platform: %s", update.GetPlatformInfo())
		ui.Plain("go: %s", runtime.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
