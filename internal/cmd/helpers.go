package cmd

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/config"
	"github.com/cameronsjo/conductor/internal/docker"
	"github.com/cameronsjo/conductor/internal/lock"
	"github.com/cameronsjo/conductor/internal/logging"
	"github.com/cameronsjo/conductor/internal/pod"
	"github.com/cameronsjo/conductor/internal/preflight"
	"github.com/cameronsjo/conductor/internal/project"
	"github.com/cameronsjo/conductor/internal/tags"
)

// Replaced in tests.
var (
	newChecker      = preflight.NewChecker
	newDockerClient = docker.NewClient
	composeOptions  []docker.ComposeOption
)

// loadProject loads the project found for the current configuration and
// applies the name and default tags overrides.
func loadProject(ctx context.Context) (*project.Project, error) {
	cfg := config.FromContext(ctx)
	root, err := cfg.RequireRoot()
	if err != nil {
		return nil, err
	}

	p, err := project.New(root, cfg.ResolvedSrcDir(), cfg.ResolvedOutputDir(),
		project.WithLogger(logging.FromContext(ctx)))
	if err != nil {
		return nil, err
	}

	if cfg.ProjectName != "" {
		p.SetName(cfg.ProjectName)
	}

	if cfg.DefaultTags != "" {
		dt, err := tags.Load(cfg.DefaultTags)
		if err != nil {
			return nil, err
		}
		logging.FromContext(ctx).Debug("loaded default tags", "source", dt.Source(), "images", dt.Images())
		p.SetDefaultTags(dt)
	}

	return p, nil
}

// selectedOverride returns the override named by --override.
func selectedOverride(ctx context.Context, p *project.Project) (*pod.Override, error) {
	name := config.FromContext(ctx).Override
	if ovr, ok := p.Override(name); ok {
		return ovr, nil
	}

	var names []string
	for ovr := range p.Overrides() {
		names = append(names, ovr.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: unknown override %q (no overrides defined in %s)",
			project.ErrConfig, name, filepath.Join(p.PodsDir(), "overrides"))
	}
	return nil, fmt.Errorf("%w: unknown override %q (available: %s)",
		project.ErrConfig, name, strings.Join(names, ", "))
}

// loadProjectOverride combines loadProject and selectedOverride.
func loadProjectOverride(ctx context.Context) (*project.Project, *pod.Override, error) {
	p, err := loadProject(ctx)
	if err != nil {
		return nil, nil, err
	}
	ovr, err := selectedOverride(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return p, ovr, nil
}

// output regenerates the project's output pods under the output lock.
func output(p *project.Project, ovr *pod.Override) error {
	return lock.WithLock(p.OutputDir(), "output", func() error {
		return p.Output(ovr)
	})
}

// podFiles returns the output files of the pods with type typ.
func podFiles(p *project.Project, ovr *pod.Override, typ pod.PodType) ([]string, error) {
	var files []string
	for pd := range p.Pods() {
		t, err := pd.PodType(ovr)
		if err != nil {
			return nil, fmt.Errorf("pod %s: %w", pd.Name(), err)
		}
		if t == typ {
			files = append(files, filepath.Join(p.OutputPodsDir(), pd.RelPath()))
		}
	}
	return files, nil
}

// requireDocker fails when the docker CLI is missing and prints warnings
// for missing optional tools.
func requireDocker(ctx context.Context) error {
	checker := newChecker()
	for _, bin := range checker.MissingOptional() {
		logging.FromContext(ctx).Debug("optional binary not found", "binary", bin.Name, "purpose", bin.Purpose)
	}
	return checker.Err()
}

// newCompose creates a compose client for project over files, attached to
// the command's streams.
func newCompose(cmd *cobra.Command, p *project.Project, files []string, opts ...docker.ComposeOption) (*docker.ComposeClient, error) {
	all := []docker.ComposeOption{docker.WithStdio(docker.Stdio{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})}
	all = append(all, composeOptions...)
	all = append(all, opts...)
	return docker.NewComposeClient(p.Name(), files, all...)
}

// withDockerClient executes a function with a Docker client, handling connection and cleanup.
func withDockerClient(ctx context.Context, fn func(client *docker.Client) error) error {
	client, err := newDockerClient()
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return err
	}
	return fn(client)
}

// templateData is the project's template data plus the output and source
// directories relative to the root.
func templateData(p *project.Project) map[string]any {
	data := maps.Clone(p.TemplateData())
	for key, dir := range map[string]string{"outputDir": p.OutputDir(), "srcDir": p.SrcDir()} {
		if rel, err := filepath.Rel(p.RootDir(), dir); err == nil && !strings.HasPrefix(rel, "..") {
			data[key] = filepath.ToSlash(rel)
		}
	}
	return data
}
