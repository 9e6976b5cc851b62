package pod

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// MetadataKey is the compose extension field holding conductor metadata.
const MetadataKey = "x-conductor"

// CommonEnvFile is the env file name picked up from the pods directory and
// from each override directory.
const CommonEnvFile = "common.env"

var (
	// ErrInvalidPodType indicates an unknown x-conductor.type value.
	ErrInvalidPodType = errors.New("invalid pod type")

	// ErrUnknownOverride indicates an override that was not discovered
	// when the pod was loaded.
	ErrUnknownOverride = errors.New("unknown override")
)

// PodType categorizes a pod under a given override.
type PodType int

const (
	// Service is a long-running pod. It is the default.
	Service PodType = iota
	// Task is a one-shot job, such as a database migration.
	Task
	// Placeholder stands in for a service that is provided externally.
	Placeholder
)

func (t PodType) String() string {
	switch t {
	case Task:
		return "task"
	case Placeholder:
		return "placeholder"
	default:
		return "service"
	}
}

// ParsePodType converts an x-conductor.type value. An empty value is Service.
func ParsePodType(s string) (PodType, error) {
	switch s {
	case "", "service":
		return Service, nil
	case "task":
		return Task, nil
	case "placeholder":
		return Placeholder, nil
	default:
		return Service, fmt.Errorf("%w: %q (supported: service, task, placeholder)", ErrInvalidPodType, s)
	}
}

// Override is a named environment overlay, one directory under
// pods/overrides.
type Override struct {
	name string
}

// NewOverride creates an override handle.
func NewOverride(name string) *Override {
	return &Override{name: name}
}

// Name returns the override name.
func (o *Override) Name() string {
	return o.name
}

// Dir returns the override directory inside podsDir.
func (o *Override) Dir(podsDir string) string {
	return filepath.Join(podsDir, "overrides", o.name)
}

// Pod is one compose file under pods/ together with the overlays every
// override defines for it.
type Pod struct {
	name     string
	podsDir  string
	base     map[string]any
	overlays map[string]map[string]any
}

// New loads pods/<name>.yml and, for each override, the optional overlay
// pods/overrides/<override>/<name>.yml. The pod type is resolved for every
// override so that a malformed x-conductor block fails here and not halfway
// through an output run.
func New(podsDir, name string, overrides []*Override) (*Pod, error) {
	base, err := loadYAML(filepath.Join(podsDir, name+".yml"))
	if err != nil {
		return nil, err
	}

	p := &Pod{
		name:     name,
		podsDir:  podsDir,
		base:     base,
		overlays: make(map[string]map[string]any, len(overrides)),
	}

	for _, ovr := range overrides {
		overlayPath := filepath.Join(ovr.Dir(podsDir), name+".yml")
		overlay, err := loadYAML(overlayPath)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			overlay = nil
		}
		p.overlays[ovr.Name()] = overlay

		if _, err := p.PodType(ovr); err != nil {
			return nil, fmt.Errorf("pod %s, override %s: %w", name, ovr.Name(), err)
		}
	}

	return p, nil
}

// loadYAML reads a compose file into a generic map. An empty file is an
// empty map.
func loadYAML(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}

// Name returns the pod name.
func (p *Pod) Name() string {
	return p.name
}

// RelPath returns the pod's file name relative to the pods directory.
func (p *Pod) RelPath() string {
	return p.name + ".yml"
}

func (p *Pod) overlay(ovr *Override) (map[string]any, error) {
	overlay, ok := p.overlays[ovr.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOverride, ovr.Name())
	}
	return overlay, nil
}

// PodType returns the pod's type with ovr applied.
func (p *Pod) PodType(ovr *Override) (PodType, error) {
	overlay, err := p.overlay(ovr)
	if err != nil {
		return Service, err
	}

	var typeName string
	if meta, ok := DeepMerge(metadata(p.base), metadata(overlay))["type"]; ok {
		s, isString := meta.(string)
		if !isString {
			return Service, fmt.Errorf("%w: %v", ErrInvalidPodType, meta)
		}
		typeName = s
	}
	return ParsePodType(typeName)
}

func metadata(doc map[string]any) map[string]any {
	meta, _ := doc[MetadataKey].(map[string]any)
	return meta
}

// MergedFile returns a fresh document combining the pod's base definition
// with ovr's overlay. The project-wide and override-specific common.env files
// are prepended to every service's env_file list.
func (p *Pod) MergedFile(ovr *Override) (*Document, error) {
	overlay, err := p.overlay(ovr)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(DeepMerge(p.base, overlay))

	var common []any
	candidates := []string{
		CommonEnvFile,
		filepath.Join("overrides", ovr.Name(), CommonEnvFile),
	}
	for _, rel := range candidates {
		_, err := os.Stat(filepath.Join(p.podsDir, rel))
		switch {
		case err == nil:
			common = append(common, rel)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(p.podsDir, rel), err)
		}
	}

	if len(common) > 0 {
		for _, name := range doc.ServiceNames() {
			svc := doc.Service(name)
			existing, err := parseEnvFileRefs(svc["env_file"])
			if err != nil {
				return nil, fmt.Errorf("service %s: %w", name, err)
			}
			envFiles := append([]any{}, common...)
			for _, ref := range existing {
				envFiles = append(envFiles, map[string]any{"path": ref.path, "required": ref.required})
			}
			svc["env_file"] = envFiles
		}
	}

	return doc, nil
}

// BuildContexts returns the git build contexts referenced by the pod's
// base file or any of its overlays, sorted and deduplicated.
func (p *Pod) BuildContexts() []string {
	seen := make(map[string]bool)

	collect := func(data map[string]any) {
		if data == nil {
			return
		}
		doc := &Document{data: data}
		for _, name := range doc.ServiceNames() {
			if ctx, ok := buildContext(doc.Service(name)); ok && IsGitContext(ctx) {
				seen[ctx] = true
			}
		}
	}

	collect(p.base)
	for _, overlay := range p.overlays {
		collect(overlay)
	}

	contexts := make([]string, 0, len(seen))
	for ctx := range seen {
		contexts = append(contexts, ctx)
	}
	sort.Strings(contexts)
	return contexts
}
