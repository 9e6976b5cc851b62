package project

import (
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/cameronsjo/conductor/internal/plugins"
	"github.com/cameronsjo/conductor/internal/pod"
	"github.com/cameronsjo/conductor/internal/repos"
	"github.com/cameronsjo/conductor/internal/tags"
)

// DefaultOutputDir is the output directory name inside the project root.
const DefaultOutputDir = ".conductor"

// DefaultSrcDir is the directory inside the project root where remote build
// contexts are cloned.
const DefaultSrcDir = "src"

// Project is a conductor project: its pods, overrides and the repositories
// they build from.
type Project struct {
	name      string
	rootDir   string
	srcDir    string
	outputDir string

	pods      []*pod.Pod
	overrides []*pod.Override
	repos     *repos.Repos

	defaultTags *tags.DefaultTags

	// Set once by New after the rest of the project is loaded.
	plugins *plugins.Manager

	logger *slog.Logger
}

// Option configures a Project.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	pluginOpts []plugins.Option
}

// WithLogger sets the logger used by the project and its plugins.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPluginOptions passes options through to the plugin manager.
func WithPluginOptions(opts ...plugins.Option) Option {
	return func(o *options) {
		o.pluginOpts = append(o.pluginOpts, opts...)
	}
}

// New loads the project rooted at rootDir. Remote build contexts are cloned
// into srcDir and output is written under outputDir.
func New(rootDir, srcDir, outputDir string, opts ...Option) (*Project, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	overrides, err := findOverrides(rootDir)
	if err != nil {
		return nil, err
	}
	pods, err := findPods(rootDir, overrides)
	if err != nil {
		return nil, err
	}
	r, err := repos.New(pods)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rootDir, err)
	}
	name := filepath.Base(absRoot)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: cannot find directory name for %s", ErrConfig, rootDir)
	}

	p := &Project{
		name:      name,
		rootDir:   rootDir,
		srcDir:    srcDir,
		outputDir: outputDir,
		pods:      pods,
		overrides: overrides,
		repos:     r,
		logger:    o.logger,
	}

	pluginOpts := append([]plugins.Option{plugins.WithLogger(o.logger)}, o.pluginOpts...)
	manager, err := plugins.NewManager(p, pluginOpts...)
	if err != nil {
		return nil, fmt.Errorf("load plugins: %w", err)
	}
	p.plugins = manager

	return p, nil
}

// NewFromRoot loads the project at rootDir using the default source and
// output directories inside it.
func NewFromRoot(rootDir string, opts ...Option) (*Project, error) {
	return New(rootDir, filepath.Join(rootDir, DefaultSrcDir), filepath.Join(rootDir, DefaultOutputDir), opts...)
}

// Name returns the project name. It defaults to the root directory's name.
func (p *Project) Name() string {
	return p.name
}

// SetName overrides the project name, like docker compose -p.
func (p *Project) SetName(name string) {
	p.name = name
}

// RootDir returns the directory containing pods/.
func (p *Project) RootDir() string {
	return p.rootDir
}

// SrcDir returns where git repositories are cloned.
func (p *Project) SrcDir() string {
	return p.srcDir
}

// OutputDir returns the output directory.
func (p *Project) OutputDir() string {
	return p.outputDir
}

// PodsDir returns the directory pod files are defined in. Relative paths in
// pod files are interpreted against it.
func (p *Project) PodsDir() string {
	return filepath.Join(p.rootDir, "pods")
}

// OutputPodsDir returns the directory Output writes pods to.
func (p *Project) OutputPodsDir() string {
	return filepath.Join(p.outputDir, "pods")
}

// Pods iterates over the pods in discovery order.
func (p *Project) Pods() iter.Seq[*pod.Pod] {
	return slices.Values(p.pods)
}

// Pod looks up a pod by name.
func (p *Project) Pod(name string) (*pod.Pod, bool) {
	for _, pd := range p.pods {
		if pd.Name() == name {
			return pd, true
		}
	}
	return nil, false
}

// Overrides iterates over the overrides in discovery order.
func (p *Project) Overrides() iter.Seq[*pod.Override] {
	return slices.Values(p.overrides)
}

// Override looks up an override by name.
func (p *Project) Override(name string) (*pod.Override, bool) {
	for _, ovr := range p.overrides {
		if ovr.Name() == name {
			return ovr, true
		}
	}
	return nil, false
}

// Repos returns the git repositories the project's pods build from.
func (p *Project) Repos() *repos.Repos {
	return p.repos
}

// DefaultTags returns the default image tags, or nil if none are set.
func (p *Project) DefaultTags() *tags.DefaultTags {
	return p.defaultTags
}

// SetDefaultTags sets the tags applied to untagged images.
func (p *Project) SetDefaultTags(dt *tags.DefaultTags) {
	p.defaultTags = dt
}

// Plugins returns the plugin manager.
func (p *Project) Plugins() *plugins.Manager {
	if p.plugins == nil {
		panic("plugins should always be set at Project init")
	}
	return p.plugins
}

// LocalCheckout returns the cloned checkout for a remote build context.
func (p *Project) LocalCheckout(context string) (string, bool) {
	return p.repos.LocalCheckout(p.srcDir, context)
}

// TemplateData is the project as seen by generator templates.
func (p *Project) TemplateData() map[string]any {
	return map[string]any{"name": p.name}
}

// MarshalJSON encodes the project as {"name": ...}.
func (p *Project) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.TemplateData())
}
