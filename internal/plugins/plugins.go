package plugins

import (
	"fmt"
	"log/slog"

	"github.com/cameronsjo/conductor/internal/pod"
	"github.com/cameronsjo/conductor/internal/tags"
)

// Operation selects how documents are being produced.
type Operation int

const (
	// Output writes documents into the project's working tree.
	Output Operation = iota
	// Export writes standalone documents to an external directory.
	Export
)

func (op Operation) String() string {
	switch op {
	case Output:
		return "output"
	case Export:
		return "export"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Project is the read-only view of a project that plugins need.
type Project interface {
	Name() string
	RootDir() string
	PodsDir() string
	DefaultTags() *tags.DefaultTags
}

// Context identifies the pod a transform is applied to.
type Context struct {
	project  Project
	override *pod.Override
	pod      *pod.Pod
}

// NewContext creates a transform context.
func NewContext(project Project, ovr *pod.Override, p *pod.Pod) *Context {
	return &Context{project: project, override: ovr, pod: p}
}

func (c *Context) Project() Project        { return c.project }
func (c *Context) Override() *pod.Override { return c.override }
func (c *Context) Pod() *pod.Pod           { return c.pod }

// Plugin transforms a pod's document in place.
type Plugin interface {
	Name() string
	Transform(op Operation, ctx *Context, doc *pod.Document) error
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	decrypt DecryptFunc
	logger  *slog.Logger
}

// WithDecryptor replaces the sops decryption used by the secrets plugin.
func WithDecryptor(fn DecryptFunc) Option {
	return func(o *managerOptions) {
		o.decrypt = fn
	}
}

// WithLogger sets the logger plugins report to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// Manager runs the plugin chain.
type Manager struct {
	plugins []Plugin
	logger  *slog.Logger
}

// NewManager builds the plugin chain for a project. Plugins that do not apply
// to the project are left out.
func NewManager(project Project, opts ...Option) (*Manager, error) {
	o := managerOptions{
		decrypt: sopsDecrypt,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{logger: o.logger}
	m.plugins = append(m.plugins, newDefaultTagsPlugin(o.logger))

	secrets, enabled, err := newSecretsPlugin(project, o.decrypt)
	if err != nil {
		return nil, err
	}
	if enabled {
		m.plugins = append(m.plugins, secrets)
	}

	m.plugins = append(m.plugins, newLabelsPlugin())

	for _, p := range m.plugins {
		o.logger.Debug("plugin enabled", "plugin", p.Name(), "project", project.Name())
	}
	return m, nil
}

// Names returns the enabled plugins in the order they run.
func (m *Manager) Names() []string {
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.Name()
	}
	return names
}

// Transform runs every plugin over doc, stopping at the first failure.
func (m *Manager) Transform(op Operation, ctx *Context, doc *pod.Document) error {
	for _, p := range m.plugins {
		if err := p.Transform(op, ctx, doc); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}
