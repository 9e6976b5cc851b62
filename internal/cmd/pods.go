package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/config"
	"github.com/cameronsjo/conductor/internal/ui"
)

var podsCmd = &cobra.Command{
	Use:   "pods",
	Short: "List pods with their type and published ports",
	Long: `List every pod, its type under the selected override and the ports
each service publishes.

Examples:
  conductor pods
  conductor -o production pods`,
	Args: cobra.NoArgs,
	RunE: runPods,
}

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "List overrides",
	Args:  cobra.NoArgs,
	RunE:  runOverrides,
}

func init() {
	rootCmd.AddCommand(podsCmd)
	rootCmd.AddCommand(overridesCmd)
}

func runPods(cmd *cobra.Command, args []string) error {
	p, ovr, err := loadProjectOverride(cmd.Context())
	if err != nil {
		return err
	}

	ui.Header("Pods in %s (%s)", p.Name(), ovr.Name())
	for pd := range p.Pods() {
		typ, err := pd.PodType(ovr)
		if err != nil {
			return err
		}
		ui.Item(pd.Name(), typ.String())

		doc, err := pd.MergedFile(ovr)
		if err != nil {
			return err
		}
		for _, svc := range doc.ServiceNames() {
			ports, err := doc.PublishedPorts(svc)
			if err != nil {
				return err
			}
			ui.Item("  "+svc, strings.Join(ports, ", "))
		}
	}
	return nil
}

func runOverrides(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	selected := config.FromContext(cmd.Context()).Override
	for ovr := range p.Overrides() {
		detail := ""
		if ovr.Name() == selected {
			detail = "(selected)"
		}
		ui.Item(ovr.Name(), detail)
	}
	return nil
}
