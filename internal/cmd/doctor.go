package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/config"
	"github.com/cameronsjo/conductor/internal/docker"
	"github.com/cameronsjo/conductor/internal/preflight"
	"github.com/cameronsjo/conductor/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"checkup"},
	Short:   "Check that docker and the project are ready",
	Long: `Run diagnostic checks for docker and the current project.

Missing optional tools are warnings. Anything that would stop output or up
from working is a failure.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	checker := newChecker()

	ui.Header("Tools")
	for _, bin := range preflight.AllBinaries() {
		switch {
		case checker.Available(bin.Name):
			ui.Success("%s found", bin.Name)
		case bin.Required:
			ui.Error("%s not found: %s", bin.Name, bin.InstallHint)
		default:
			ui.Warning("%s not found (%s)", bin.Name, bin.Purpose)
		}
	}
	warnings, failures := checker.CheckAll()
	warned, failed := len(warnings), len(failures)

	ui.Header("Docker")
	if checker.Available("docker") {
		err := withDockerClient(ctx, func(*docker.Client) error { return nil })
		if err != nil {
			ui.Error("Docker daemon not reachable: %v", err)
			failed++
		} else {
			ui.Success("Docker daemon is running")
		}
	} else {
		ui.Warning("Skipped, docker is not installed")
	}

	ui.Header("Project")
	p, err := loadProject(ctx)
	switch {
	case errors.Is(err, config.ErrNoProject):
		ui.Warning("Not inside a conductor project")
		warned++
	case err != nil:
		ui.Error("%v", err)
		failed++
	default:
		ui.Success("%s at %s (%d pods, %d overrides)", p.Name(), p.RootDir(), len(slices.Collect(p.Pods())), len(slices.Collect(p.Overrides())))
		if dt := p.DefaultTags(); dt != nil {
			ui.Success("Default tags from %s (%d images)", dt.Source(), dt.Len())
		}
		for _, r := range p.Repos().List() {
			if r.IsCloned(p.SrcDir()) {
				ui.Success("%s cloned in %s", r.Alias(), r.Path(p.SrcDir()))
			} else {
				ui.Info("%s builds from %s", r.Alias(), r.URL())
			}
		}
	}

	ui.Plain("")
	ui.Plain("Summary: %d failed, %d warnings", failed, warned)
	if failed > 0 {
		return fmt.Errorf("doctor found %d problems", failed)
	}
	return nil
}
