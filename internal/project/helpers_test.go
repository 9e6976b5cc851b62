package project

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/conductor/internal/pod"
)

// fromExample loads testdata/examples/<name> with source and output
// directories in a temp dir.
func fromExample(t *testing.T, name string, opts ...Option) *Project {
	t.Helper()
	out := t.TempDir()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	p, err := New(filepath.Join("testdata", "examples", name), filepath.Join(out, "src"), out, opts...)
	require.NoError(t, err)
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// writeProject lays out a project in a temp dir from relative paths.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "proj")
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func mustOverride(t *testing.T, p *Project, name string) *pod.Override {
	t.Helper()
	ovr, ok := p.Override(name)
	require.True(t, ok, "override %s", name)
	return ovr
}

func podNames(p *Project) []string {
	var names []string
	for pd := range p.Pods() {
		names = append(names, pd.Name())
	}
	return names
}

func overrideNames(p *Project) []string {
	var names []string
	for ovr := range p.Overrides() {
		names = append(names, ovr.Name())
	}
	return names
}

// listTree returns every file under dir relative to it, sorted.
func listTree(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	slices.Sort(files)
	return files
}
