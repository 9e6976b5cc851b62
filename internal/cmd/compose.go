package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/docker"
	"github.com/cameronsjo/conductor/internal/pod"
	"github.com/cameronsjo/conductor/internal/project"
	"github.com/cameronsjo/conductor/internal/ui"
)

var upCmd = &cobra.Command{
	Use:   "up [service...]",
	Short: "Output the project and start its service pods",
	Long: `Regenerate the output pods for the selected override, then run
docker compose up -d over every service pod. Task and placeholder pods are
not started.

Examples:
  conductor up           # Start everything
  conductor up web       # Start one service and its dependencies`,
	RunE: runUp,
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the project's service containers",
	Args:  cobra.NoArgs,
	RunE:  runDown,
}

var runCmd = &cobra.Command{
	Use:   "run <task-pod> [args...]",
	Short: "Run a task pod once",
	Long: `Regenerate the output pods, then run a task pod with
docker compose run --rm. Extra arguments replace the service command.

The service run is the one named like the pod, or the pod's only service.

Examples:
  conductor run migrate
  conductor run migrate rake db:seed
  conductor run -T migrate   # No TTY, for scripts and CI`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var runNoTTY bool

func init() {
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().BoolVarP(&runNoTTY, "no-tty", "T", false, "Disable pseudo-TTY allocation")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(runCmd)
}

// prepareCompose checks for docker, outputs the project and returns it with
// the selected override.
func prepareCompose(ctx context.Context) (*project.Project, *pod.Override, error) {
	if err := requireDocker(ctx); err != nil {
		return nil, nil, err
	}

	p, ovr, err := loadProjectOverride(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := output(p, ovr); err != nil {
		return nil, nil, err
	}
	return p, ovr, nil
}

func serviceCompose(cmd *cobra.Command) (*project.Project, *docker.ComposeClient, error) {
	p, ovr, err := prepareCompose(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	files, err := podFiles(p, ovr, pod.Service)
	if err != nil {
		return nil, nil, err
	}
	compose, err := newCompose(cmd, p, files)
	if err != nil {
		return nil, nil, err
	}
	return p, compose, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	p, compose, err := serviceCompose(cmd)
	if err != nil {
		return err
	}

	ui.Info("Starting %s (%d pods)", p.Name(), len(compose.Files()))
	if err := compose.Up(cmd.Context(), args...); err != nil {
		return err
	}

	ui.Success("%s is up", p.Name())
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	p, compose, err := serviceCompose(cmd)
	if err != nil {
		return err
	}

	if err := compose.Down(cmd.Context()); err != nil {
		return err
	}

	ui.Success("%s is down", p.Name())
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, ovr, err := prepareCompose(ctx)
	if err != nil {
		return err
	}

	pd, ok := p.Pod(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown pod %q", project.ErrConfig, args[0])
	}
	typ, err := pd.PodType(ovr)
	if err != nil {
		return err
	}
	if typ != pod.Task {
		return fmt.Errorf("%w: pod %s is a %s pod, not a task", project.ErrConfig, pd.Name(), typ)
	}

	doc, err := pd.MergedFile(ovr)
	if err != nil {
		return err
	}
	service, err := taskService(pd.Name(), doc.ServiceNames())
	if err != nil {
		return err
	}

	var opts []docker.ComposeOption
	if runNoTTY {
		opts = append(opts, docker.WithTTY(false))
	}
	compose, err := newCompose(cmd, p, []string{filepath.Join(p.OutputPodsDir(), pd.RelPath())}, opts...)
	if err != nil {
		return err
	}

	ui.Info("Running %s/%s", pd.Name(), service)
	return compose.Run(ctx, service, args[1:]...)
}

// taskService picks the service to run for a task pod.
func taskService(podName string, services []string) (string, error) {
	switch {
	case slices.Contains(services, podName):
		return podName, nil
	case len(services) == 1:
		return services[0], nil
	case len(services) == 0:
		return "", fmt.Errorf("%w: task pod %s has no services", project.ErrConfig, podName)
	default:
		return "", fmt.Errorf("%w: task pod %s has several services and none is named %s", project.ErrConfig, podName, podName)
	}
}
