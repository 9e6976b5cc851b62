package docker

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/cameronsjo/conductor/internal/plugins"
)

// Labels docker compose puts on every container it creates.
const (
	LabelComposeProject = "com.docker.compose.project"
	LabelComposeService = "com.docker.compose.service"
)

// Client wraps the Docker SDK client.
type Client struct {
	api DockerAPI
}

// NewClient connects to the daemon configured by the DOCKER_* environment.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	return &Client{api: cli}, nil
}

// NewClientWithAPI creates a Client over a custom API implementation.
func NewClientWithAPI(api DockerAPI) *Client {
	return &Client{api: api}
}

// Ping tests the connection to the Docker daemon.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker: %w", err)
	}

	return nil
}

// Close closes the Docker client connection.
func (c *Client) Close() error {
	if c.api != nil {
		return c.api.Close()
	}
	return nil
}

// ContainerInfo holds summary information about a project container.
type ContainerInfo struct {
	ID      string
	Name    string
	Pod     string
	Service string
	Image   string
	State   string
	Status  string
	Created time.Time
	Ports   []string
}

// Running reports whether the container is running.
func (c ContainerInfo) Running() bool {
	return c.State == "running"
}

// ProjectContainers returns every container, running or stopped, that
// docker compose created for project, ordered by pod then service.
func (c *Client) ProjectContainers(ctx context.Context, project string) ([]ContainerInfo, error) {
	containers, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelComposeProject+"="+project)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers for %s: %w", project, err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		result = append(result, newContainerInfo(ctr))
	}

	slices.SortFunc(result, func(a, b ContainerInfo) int {
		return cmp.Or(
			cmp.Compare(a.Pod, b.Pod),
			cmp.Compare(a.Service, b.Service),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return result, nil
}

func newContainerInfo(ctr container.Summary) ContainerInfo {
	name := ""
	if len(ctr.Names) > 0 {
		name = strings.TrimPrefix(ctr.Names[0], "/")
	}

	id := ctr.ID
	if len(id) > 12 {
		id = id[:12]
	}

	return ContainerInfo{
		ID:      id,
		Name:    name,
		Pod:     ctr.Labels[plugins.LabelPod],
		Service: ctr.Labels[LabelComposeService],
		Image:   ctr.Image,
		State:   string(ctr.State),
		Status:  ctr.Status,
		Created: time.Unix(ctr.Created, 0),
		Ports:   formatPorts(ctr.Ports),
	}
}

// formatPorts renders port bindings as host->container/proto, the way
// docker ps does.
func formatPorts(ports []container.Port) []string {
	result := make([]string, 0, len(ports))
	for _, p := range ports {
		switch {
		case p.PublicPort > 0 && p.IP != "" && p.IP != "0.0.0.0" && p.IP != "::":
			result = append(result, fmt.Sprintf("%s:%d->%d/%s", p.IP, p.PublicPort, p.PrivatePort, p.Type))
		case p.PublicPort > 0:
			result = append(result, fmt.Sprintf("%d->%d/%s", p.PublicPort, p.PrivatePort, p.Type))
		default:
			result = append(result, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
		}
	}
	slices.Sort(result)
	return slices.Compact(result)
}
