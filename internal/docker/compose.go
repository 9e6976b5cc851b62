package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"
)

// ErrNoComposeFiles is returned when a compose command has no pod files to act on.
var ErrNoComposeFiles = errors.New("no compose files")

// Runner executes an external command with the given stdio.
type Runner interface {
	Run(ctx context.Context, stdio Stdio, name string, args ...string) error
}

// Stdio carries the streams a compose command is attached to.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdio Stdio, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	return cmd.Run()
}

// ComposeClient runs docker compose for one project over a set of pod files.
type ComposeClient struct {
	project string
	files   []string
	stdio   Stdio
	runner  Runner
	tty     bool
}

// ComposeOption configures a ComposeClient.
type ComposeOption func(*ComposeClient)

// WithStdio attaches compose to the given streams instead of the process's own.
func WithStdio(stdio Stdio) ComposeOption {
	return func(c *ComposeClient) {
		c.stdio = stdio
	}
}

// WithTTY sets whether run may allocate a pseudo-TTY. It defaults to
// whether stdin is a terminal.
func WithTTY(tty bool) ComposeOption {
	return func(c *ComposeClient) {
		c.tty = tty
	}
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) ComposeOption {
	return func(c *ComposeClient) {
		c.runner = r
	}
}

// NewComposeClient creates a compose client for project. Every file must exist.
func NewComposeClient(project string, files []string, opts ...ComposeOption) (*ComposeClient, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("project %s: %w", project, ErrNoComposeFiles)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("compose file not found: %w", err)
		}
	}

	c := &ComposeClient{
		project: project,
		files:   files,
		stdio:   Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr},
		runner:  execRunner{},
		tty:     term.IsTerminal(int(os.Stdin.Fd())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Files returns the compose files passed with -f.
func (c *ComposeClient) Files() []string {
	return c.files
}

func (c *ComposeClient) args(sub ...string) []string {
	args := []string{"compose", "-p", c.project}
	for _, f := range c.files {
		args = append(args, "-f", f)
	}
	return append(args, sub...)
}

func (c *ComposeClient) run(ctx context.Context, stdio Stdio, sub ...string) error {
	if err := c.runner.Run(ctx, stdio, "docker", c.args(sub...)...); err != nil {
		return fmt.Errorf("docker compose %s: %w", sub[0], err)
	}
	return nil
}

// Up builds and starts services in the background.
func (c *ComposeClient) Up(ctx context.Context, services ...string) error {
	sub := append([]string{"up", "-d", "--build", "--remove-orphans"}, services...)
	return c.run(ctx, c.stdio, sub...)
}

// Down stops and removes the project's containers and networks.
func (c *ComposeClient) Down(ctx context.Context) error {
	return c.run(ctx, c.stdio, "down", "--remove-orphans")
}

// Run runs a one-off container for service and removes it afterwards.
func (c *ComposeClient) Run(ctx context.Context, service string, args ...string) error {
	sub := []string{"run", "--rm"}
	if !c.tty {
		sub = append(sub, "-T")
	}
	sub = append(sub, service)
	sub = append(sub, args...)
	return c.run(ctx, c.stdio, sub...)
}

// Ps runs docker compose ps and returns the raw output.
func (c *ComposeClient) Ps(ctx context.Context) (string, error) {
	var out bytes.Buffer
	stdio := Stdio{Out: &out, Err: &out}
	if err := c.run(ctx, stdio, "ps"); err != nil {
		return "", fmt.Errorf("%w\n%s", err, out.String())
	}
	return out.String(), nil
}
