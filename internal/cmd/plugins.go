package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/ui"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Show the plugin chain in the order it runs",
	Args:  cobra.NoArgs,
	RunE:  runPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func runPlugins(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	for i, name := range p.Plugins().Names() {
		ui.Step(i+1, "%s", name)
	}
	return nil
}
