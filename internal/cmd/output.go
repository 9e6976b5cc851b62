package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/ui"
)

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Merge pods for the selected override into the output directory",
	Long: `Merge every pod with its overlay for the selected override and write the
result to .conductor/pods, ready for docker compose.

Relative paths are resolved against pods/, env files are inlined, and git
build contexts point at local clones under src/ when one exists. The previous
output is only replaced once every pod was written.

Examples:
  conductor output                 # development override
  conductor -o production output   # production override`,
	Args: cobra.NoArgs,
	RunE: runOutput,
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write standalone pods for deployment",
	Long: `Write standalone pods for the selected override into a new directory.

Variables are resolved from the environment, build sections are dropped in
favor of images, and task pods are written to <dir>/tasks. Secrets are never
exported. The directory must not exist.

Examples:
  conductor -o production export dist/
  conductor -o production --default-tags tags.txt export dist/`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(outputCmd)
	rootCmd.AddCommand(exportCmd)
}

func runOutput(cmd *cobra.Command, args []string) error {
	p, ovr, err := loadProjectOverride(cmd.Context())
	if err != nil {
		return err
	}

	if err := output(p, ovr); err != nil {
		return err
	}

	ui.Success("Wrote %s pods for %s to %s", ovr.Name(), p.Name(), p.OutputPodsDir())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	p, ovr, err := loadProjectOverride(cmd.Context())
	if err != nil {
		return err
	}

	if err := p.Export(ovr, args[0]); err != nil {
		return err
	}

	ui.Success("Exported %s pods for %s to %s", ovr.Name(), p.Name(), args[0])
	return nil
}
