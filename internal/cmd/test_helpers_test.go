package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/conductor/internal/docker"
	"github.com/cameronsjo/conductor/internal/preflight"
)

// resetFlags puts every flag in the command tree back to its default so
// values don't leak between executions of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCmd executes the root command with the given args and returns the output.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// chdir switches to dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(original) })
}

// shopProject is a project with a service pod, a task pod and two overrides.
var shopProject = map[string]string{
	"pods/web.yml": `services:
  web:
    image: nginx
    ports:
      - "8080:80"
`,
	"pods/db.yml": `services:
  db:
    image: postgres
`,
	"pods/migrate.yml": `x-conductor:
  type: task
services:
  migrate:
    image: example/shop
    command: rake db:migrate
`,
	"pods/overrides/development/web.yml": `services:
  web:
    environment:
      MODE: development
`,
	"pods/overrides/production/web.yml": `services:
  web:
    environment:
      MODE: production
`,
}

// enterProject lays out files in <tmp>/shop and changes into it.
func enterProject(t *testing.T, files map[string]string) string {
	t.Helper()
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(tmp, "shop")
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	chdir(t, root)
	return root
}

// recordingRunner records docker commands instead of running them.
type recordingRunner struct {
	calls [][]string
	stdio docker.Stdio
}

func (r *recordingRunner) Run(ctx context.Context, stdio docker.Stdio, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	r.stdio = stdio
	return nil
}

// fakeDocker installs a PATH with docker on it and a recording compose runner.
func fakeDocker(t *testing.T) *recordingRunner {
	t.Helper()
	runner := &recordingRunner{}

	prevChecker, prevOpts := newChecker, composeOptions
	newChecker = func() *preflight.Checker {
		return preflight.NewCheckerWithLookPath(func(name string) (string, error) {
			if name == "docker" {
				return "/usr/bin/docker", nil
			}
			return "", errors.New("not found")
		})
	}
	composeOptions = []docker.ComposeOption{docker.WithRunner(runner), docker.WithTTY(true)}
	t.Cleanup(func() {
		newChecker, composeOptions = prevChecker, prevOpts
	})
	return runner
}

// fakeDockerAPI serves a fixed container list.
type fakeDockerAPI struct {
	containers []container.Summary
	pingErr    error
	listOpts   container.ListOptions
}

func (f *fakeDockerAPI) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeDockerAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.listOpts = options
	return f.containers, nil
}

func (f *fakeDockerAPI) Close() error { return nil }

func useDockerAPI(t *testing.T, api docker.DockerAPI) {
	t.Helper()
	prev := newDockerClient
	newDockerClient = func() (*docker.Client, error) {
		return docker.NewClientWithAPI(api), nil
	}
	t.Cleanup(func() { newDockerClient = prev })
}
