package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cameronsjo/conductor/internal/pod"
)

// findOverrides lists the directories directly under pods/overrides. A
// project without an overrides directory has no overrides.
func findOverrides(rootDir string) ([]*pod.Override, error) {
	dir := filepath.Join(rootDir, "pods", "overrides")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list overrides %s: %w", dir, err)
	}

	var overrides []*pod.Override
	var names []string
	for _, entry := range entries {
		// Stat follows symlinked override directories.
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if errors.Is(err, fs.ErrNotExist) {
			// dangling symlink
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(dir, entry.Name()), err)
		}
		if !info.IsDir() {
			continue
		}
		overrides = append(overrides, pod.NewOverride(entry.Name()))
		names = append(names, entry.Name())
	}

	if err := checkUnique("override", names); err != nil {
		return nil, err
	}
	return overrides, nil
}

// findPods loads every *.yml file directly under pods/ with the full set of
// overrides.
func findPods(rootDir string, overrides []*pod.Override) ([]*pod.Pod, error) {
	dir := filepath.Join(rootDir, "pods")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no pods directory in %s", ErrConfig, rootDir)
		}
		return nil, fmt.Errorf("list pods %s: %w", dir, err)
	}

	var pods []*pod.Pod
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yml")

		p, err := pod.New(dir, name, overrides)
		if err != nil {
			return nil, fmt.Errorf("load pod %s: %w", name, err)
		}
		pods = append(pods, p)
		names = append(names, name)
	}

	if err := checkUnique("pod", names); err != nil {
		return nil, err
	}
	return pods, nil
}

func checkUnique(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("%w: duplicate %s name %q", ErrConfig, kind, name)
		}
		seen[name] = true
	}
	return nil
}
