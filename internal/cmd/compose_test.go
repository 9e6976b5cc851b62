package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/conductor/internal/docker"
	"github.com/cameronsjo/conductor/internal/preflight"
	"github.com/cameronsjo/conductor/internal/project"
)

func TestUpCmd(t *testing.T) {
	root := enterProject(t, shopProject)
	runner := fakeDocker(t)

	output, err := executeCmd(t, "up")
	require.NoError(t, err)
	assert.Contains(t, output, "shop is up")

	podsDir := filepath.Join(root, ".conductor", "pods")
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"docker", "compose", "-p", "shop",
		"-f", filepath.Join(podsDir, "db.yml"),
		"-f", filepath.Join(podsDir, "web.yml"),
		"up", "-d", "--build", "--remove-orphans",
	}, runner.calls[0])
	assert.FileExists(t, filepath.Join(podsDir, "migrate.yml"))
	assert.NotNil(t, runner.stdio.In)
	assert.NotNil(t, runner.stdio.Out)
	assert.NotNil(t, runner.stdio.Err)
}

func TestUpCmd_Services(t *testing.T) {
	enterProject(t, shopProject)
	runner := fakeDocker(t)

	_, err := executeCmd(t, "-p", "storefront", "up", "web")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "storefront", runner.calls[0][3])
	assert.Equal(t, "web", runner.calls[0][len(runner.calls[0])-1])
}

func TestUpCmd_DockerMissing(t *testing.T) {
	root := enterProject(t, shopProject)
	runner := fakeDocker(t)
	newChecker = func() *preflight.Checker {
		return preflight.NewCheckerWithLookPath(func(string) (string, error) {
			return "", errors.New("not found")
		})
	}

	_, err := executeCmd(t, "up")
	require.Error(t, err)
	var missing *preflight.MissingError
	assert.ErrorAs(t, err, &missing)
	assert.Empty(t, runner.calls)
	assert.NoDirExists(t, filepath.Join(root, ".conductor", "pods"))
}

func TestDownCmd(t *testing.T) {
	enterProject(t, shopProject)
	runner := fakeDocker(t)

	output, err := executeCmd(t, "down")
	require.NoError(t, err)
	assert.Contains(t, output, "shop is down")
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"down", "--remove-orphans"}, runner.calls[0][len(runner.calls[0])-2:])
}

func TestRunCmd(t *testing.T) {
	root := enterProject(t, shopProject)
	runner := fakeDocker(t)

	_, err := executeCmd(t, "run", "migrate", "rake", "-T")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"docker", "compose", "-p", "shop",
		"-f", filepath.Join(root, ".conductor", "pods", "migrate.yml"),
		"run", "--rm", "migrate", "rake", "-T",
	}, runner.calls[0])
}

func TestRunCmd_NoTTY(t *testing.T) {
	enterProject(t, shopProject)
	runner := fakeDocker(t)

	_, err := executeCmd(t, "run", "-T", "migrate")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"run", "--rm", "-T", "migrate"}, runner.calls[0][len(runner.calls[0])-4:])
}

func TestRunCmd_Errors(t *testing.T) {
	enterProject(t, shopProject)
	runner := fakeDocker(t)

	_, err := executeCmd(t, "run", "web")
	assert.ErrorIs(t, err, project.ErrConfig)
	assert.ErrorContains(t, err, "not a task")

	_, err = executeCmd(t, "run", "ghost")
	assert.ErrorIs(t, err, project.ErrConfig)
	assert.ErrorContains(t, err, `unknown pod "ghost"`)

	assert.Empty(t, runner.calls)
}

func TestTaskService(t *testing.T) {
	tests := []struct {
		name     string
		services []string
		want     string
		wantErr  bool
	}{
		{name: "named like pod", services: []string{"db", "migrate"}, want: "migrate"},
		{name: "single service", services: []string{"job"}, want: "job"},
		{name: "no services", services: nil, wantErr: true},
		{name: "ambiguous", services: []string{"a", "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := taskService("migrate", tt.services)
			if tt.wantErr {
				assert.ErrorIs(t, err, project.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPsCmd(t *testing.T) {
	enterProject(t, shopProject)
	api := &fakeDockerAPI{containers: []container.Summary{
		{
			ID:     "aaaaaaaaaaaaaaaa",
			Names:  []string{"/shop-web-1"},
			State:  "running",
			Status: "Up 5 minutes",
			Labels: map[string]string{
				docker.LabelComposeService: "web",
				"io.conductor.pod":         "web",
			},
			Ports: []container.Port{{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Type: "tcp"}},
		},
	}}
	useDockerAPI(t, api)

	output, err := executeCmd(t, "ps")
	require.NoError(t, err)
	assert.Contains(t, output, "Containers in shop")
	assert.Contains(t, output, "web (shop-web-1)")
	assert.Contains(t, output, "Up 5 minutes  8080->80/tcp")
	assert.True(t, api.listOpts.Filters.ExactMatch("label", docker.LabelComposeProject+"=shop"))
}

func TestPsCmd_NoContainers(t *testing.T) {
	enterProject(t, shopProject)
	useDockerAPI(t, &fakeDockerAPI{})

	output, err := executeCmd(t, "ps")
	require.NoError(t, err)
	assert.Contains(t, output, "No containers for shop")
}

func TestPsCmd_DaemonDown(t *testing.T) {
	enterProject(t, shopProject)
	useDockerAPI(t, &fakeDockerAPI{pingErr: errors.New("connection refused")})

	_, err := executeCmd(t, "ps")
	assert.ErrorContains(t, err, "ping docker")
}

func TestPsCmd_Compose(t *testing.T) {
	root := enterProject(t, shopProject)
	runner := fakeDocker(t)

	_, err := executeCmd(t, "output")
	require.NoError(t, err)

	_, err = executeCmd(t, "ps", "--compose")
	require.NoError(t, err)

	podsDir := filepath.Join(root, ".conductor", "pods")
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"docker", "compose", "-p", "shop",
		"-f", filepath.Join(podsDir, "db.yml"),
		"-f", filepath.Join(podsDir, "web.yml"),
		"ps",
	}, runner.calls[0])
}

func TestPsCmd_ComposeWithoutOutput(t *testing.T) {
	enterProject(t, shopProject)
	runner := fakeDocker(t)

	_, err := executeCmd(t, "ps", "--compose")
	require.Error(t, err)
	assert.ErrorContains(t, err, "run conductor output first")
	assert.Empty(t, runner.calls)
}
