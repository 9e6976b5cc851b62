// Package generate renders the project scaffolding files conductor can
// write into a project root.
package generate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/cameronsjo/conductor/internal/fileutil"
)

var (
	// ErrUnknownGenerator is returned for a generator name that does not exist.
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrFileExists is returned when a target exists and force is not set.
	ErrFileExists = errors.New("file already exists")
)

//go:embed templates/*.tmpl
var templates embed.FS

// Generator writes one file relative to the project root.
type Generator struct {
	Name        string
	Target      string
	Description string
}

var generators = []Generator{
	{Name: "env", Target: ".env", Description: "docker compose environment with COMPOSE_PROJECT_NAME"},
	{Name: "gitignore", Target: ".gitignore", Description: "ignore output and cloned source directories"},
}

// List returns every generator, sorted by name.
func List() []Generator {
	return slices.Clone(generators)
}

// Find looks a generator up by name.
func Find(name string) (Generator, error) {
	for _, g := range generators {
		if g.Name == name {
			return g, nil
		}
	}
	return Generator{}, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
}

// Render executes the named template with data.
func Render(name string, data map[string]any, w io.Writer) error {
	if _, err := Find(name); err != nil {
		return err
	}

	content, err := templates.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return fmt.Errorf("read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	return nil
}

// Generate renders the named generator into rootDir and returns the path it
// wrote. An existing file is only replaced when force is set.
func Generate(name string, data map[string]any, rootDir string, force bool) (string, error) {
	g, err := Find(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(rootDir, g.Target)
	exists, err := fileutil.Exists(path)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", path, err)
	}
	if exists && !force {
		return "", fmt.Errorf("%w: %s (use --force to overwrite)", ErrFileExists, path)
	}

	var buf bytes.Buffer
	if err := Render(name, data, &buf); err != nil {
		return "", err
	}

	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
