package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/docker"
	"github.com/cameronsjo/conductor/internal/pod"
	"github.com/cameronsjo/conductor/internal/ui"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Show the project's containers",
	Long: `List every container docker compose created for the project, running
or stopped, grouped by pod.

With --compose, run docker compose ps over the service pods of the last
output instead.`,
	Args: cobra.NoArgs,
	RunE: runPs,
}

var psCompose bool

func init() {
	psCmd.Flags().BoolVar(&psCompose, "compose", false, "Show docker compose ps for the generated service pods")
	rootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	if psCompose {
		return runComposePs(cmd)
	}

	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	return withDockerClient(cmd.Context(), func(client *docker.Client) error {
		containers, err := client.ProjectContainers(cmd.Context(), p.Name())
		if err != nil {
			return err
		}

		if len(containers) == 0 {
			ui.Info("No containers for %s", p.Name())
			return nil
		}

		ui.Header("Containers in %s", p.Name())
		current := ""
		for _, c := range containers {
			if c.Pod != current {
				current = c.Pod
				ui.Plain("%s", current)
			}

			detail := c.Status
			if len(c.Ports) > 0 {
				detail += "  " + strings.Join(c.Ports, ", ")
			}
			name := fmt.Sprintf("%s (%s)", c.Service, c.Name)
			if c.Running() {
				ui.Item(ui.Green.Sprint(name), detail)
			} else {
				ui.Item(ui.Red.Sprint(name), detail)
			}
		}
		return nil
	})
}

// runComposePs runs docker compose ps without regenerating the output.
func runComposePs(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := requireDocker(ctx); err != nil {
		return err
	}

	p, ovr, err := loadProjectOverride(ctx)
	if err != nil {
		return err
	}
	files, err := podFiles(p, ovr, pod.Service)
	if err != nil {
		return err
	}
	compose, err := newCompose(cmd, p, files)
	if err != nil {
		return fmt.Errorf("%w (run conductor output first)", err)
	}
	out, err := compose.Ps(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
