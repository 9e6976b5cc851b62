package pod

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/conductor/internal/fileutil"
)

// ErrBuildWithoutImage is returned on export for a service that can only be
// built from local sources.
var ErrBuildWithoutImage = errors.New("service builds from source but has no image")

// Project is the read-only view of a project that document rewrites need.
type Project interface {
	// Name is the project name.
	Name() string

	// LocalCheckout returns the local directory for a remote build
	// context, if that repository has been cloned into the source tree.
	LocalCheckout(context string) (string, bool)
}

// Document is a merged compose file. The pipeline threads a single document
// through each rewrite; nothing else holds a reference to its data.
type Document struct {
	data map[string]any
}

// NewDocument wraps a decoded compose mapping.
func NewDocument(data map[string]any) *Document {
	if data == nil {
		data = make(map[string]any)
	}
	return &Document{data: data}
}

// ParseDocument decodes compose YAML.
func ParseDocument(content []byte) (*Document, error) {
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return NewDocument(data), nil
}

// Data returns the underlying mapping. Plugins mutate it in place.
func (d *Document) Data() map[string]any {
	return d.data
}

// ServiceNames returns the names of all services, sorted.
func (d *Document) ServiceNames() []string {
	services, _ := d.data["services"].(map[string]any)
	names := make([]string, 0, len(services))
	for name, svc := range services {
		if _, ok := svc.(map[string]any); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Service returns the named service mapping, or nil.
func (d *Document) Service(name string) map[string]any {
	services, _ := d.data["services"].(map[string]any)
	svc, _ := services[name].(map[string]any)
	return svc
}

// Environment returns a service's environment as a mapping, converting the
// list form if needed and storing the mapping back on the service.
func (d *Document) Environment(service string) map[string]any {
	svc := d.Service(service)
	if svc == nil {
		return nil
	}
	env := normalizeToDict(svc["environment"])
	svc["environment"] = env
	return env
}

// Labels returns a service's labels as a mapping, like Environment.
func (d *Document) Labels(service string) map[string]any {
	svc := d.Service(service)
	if svc == nil {
		return nil
	}
	labels := normalizeToDict(svc["labels"])
	svc["labels"] = labels
	return labels
}

// IsRemoteContext reports whether a build context is a URL rather than a
// local directory.
func IsRemoteContext(context string) bool {
	for _, prefix := range []string{"git@", "git://", "ssh://", "http://", "https://"} {
		if strings.HasPrefix(context, prefix) {
			return true
		}
	}
	return false
}

// IsGitContext reports whether a build context names a git repository.
// HTTP contexts count only when the URL ends in .git, so tarball contexts
// are left to docker.
func IsGitContext(context string) bool {
	for _, prefix := range []string{"git@", "git://", "ssh://"} {
		if strings.HasPrefix(context, prefix) {
			return true
		}
	}
	if !strings.HasPrefix(context, "http://") && !strings.HasPrefix(context, "https://") {
		return false
	}
	url, _, _ := strings.Cut(context, "#")
	return strings.HasSuffix(url, ".git")
}

// buildContext extracts the context from either build syntax.
func buildContext(svc map[string]any) (string, bool) {
	switch build := svc["build"].(type) {
	case string:
		return build, true
	case map[string]any:
		ctx, ok := build["context"].(string)
		if !ok {
			// compose defaults a missing context to "."
			return ".", true
		}
		return ctx, true
	default:
		return "", false
	}
}

func setBuildContext(svc map[string]any, context string) {
	if build, ok := svc["build"].(map[string]any); ok {
		build["context"] = context
		return
	}
	svc["build"] = context
}

// MakeStandalone rewrites the document so it no longer depends on the
// project layout: local build contexts, bind mount sources and env file
// paths are resolved against podsDir, and env files are inlined into
// environment (explicit environment entries win). Inlined values have $
// escaped to $$ so compose does not interpolate them.
func (d *Document) MakeStandalone(podsDir string) error {
	absPods, err := filepath.Abs(podsDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", podsDir, err)
	}

	for _, name := range d.ServiceNames() {
		svc := d.Service(name)

		if ctx, ok := buildContext(svc); ok && !IsRemoteContext(ctx) {
			setBuildContext(svc, resolvePath(absPods, ctx))
		}

		if volumes, ok := svc["volumes"].([]any); ok {
			for i, vol := range volumes {
				volumes[i] = standaloneVolume(absPods, vol)
			}
		}

		if raw, ok := svc["env_file"]; ok {
			refs, err := parseEnvFileRefs(raw)
			if err != nil {
				return fmt.Errorf("service %s: %w", name, err)
			}
			fileVars, err := readEnvFiles(absPods, refs)
			if err != nil {
				return fmt.Errorf("service %s: %w", name, err)
			}

			env := d.Environment(name)
			for k, v := range fileVars {
				if _, explicit := env[k]; !explicit {
					env[k] = EscapeDollar(v)
				}
			}
			delete(svc, "env_file")
		}
	}

	return nil
}

// standaloneVolume resolves relative bind mount sources. Named volumes and
// anonymous volumes are returned unchanged.
func standaloneVolume(baseDir string, vol any) any {
	switch v := vol.(type) {
	case string:
		parts := strings.SplitN(v, ":", 2)
		if len(parts) == 2 && isLocalPath(parts[0]) {
			return resolvePath(baseDir, parts[0]) + ":" + parts[1]
		}
		return v
	case map[string]any:
		if v["type"] == "bind" {
			if src, ok := v["source"].(string); ok && isLocalPath(src) {
				v["source"] = resolvePath(baseDir, src)
			}
		}
		return v
	default:
		return vol
	}
}

func isLocalPath(p string) bool {
	return p == "." || p == ".." || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || filepath.IsAbs(p)
}

// UpdateForOutput prepares the document for the local working tree: remote
// build contexts are pointed at local checkouts when they exist.
func (d *Document) UpdateForOutput(p Project) error {
	for _, name := range d.ServiceNames() {
		svc := d.Service(name)
		ctx, ok := buildContext(svc)
		if !ok || !IsGitContext(ctx) {
			continue
		}
		if local, ok := p.LocalCheckout(ctx); ok {
			setBuildContext(svc, local)
		}
	}
	return nil
}

// UpdateForExport prepares the document for shipping elsewhere: variable
// interpolations are resolved from the process environment, and build
// sections are dropped because the export cannot carry source trees.
func (d *Document) UpdateForExport(p Project) error {
	resolved, err := InterpolateMap(d.data, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("project %s: %w", p.Name(), err)
	}
	d.data = resolved

	for _, name := range d.ServiceNames() {
		svc := d.Service(name)
		if _, hasBuild := svc["build"]; !hasBuild {
			continue
		}
		if _, hasImage := svc["image"]; !hasImage {
			return fmt.Errorf("project %s: service %s: %w", p.Name(), name, ErrBuildWithoutImage)
		}
		delete(svc, "build")
	}

	return nil
}

// Marshal serializes the document as YAML with two-space indentation.
// Mapping keys are emitted sorted, so equal documents give equal bytes.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.data); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteToPath writes the document to path, replacing any existing file.
func (d *Document) WriteToPath(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
