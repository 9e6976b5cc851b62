package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cameronsjo/conductor/internal/fileutil"
	"github.com/cameronsjo/conductor/internal/plugins"
	"github.com/cameronsjo/conductor/internal/pod"
)

// Output replaces OutputPodsDir with the pods merged for ovr. The new tree
// is built in a staging directory next to it and swapped in only when every
// pod was written, so a failed run leaves the previous output in place.
func (p *Project) Output(ovr *pod.Override) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", p.outputDir, err)
	}

	staging := filepath.Join(p.outputDir, ".pods-"+uuid.NewString()[:8])
	if err := os.Mkdir(staging, 0755); err != nil {
		return fmt.Errorf("create %s: %w", staging, err)
	}

	if err := p.outputPods(ovr, plugins.Output, staging); err != nil {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			p.logger.Warn("failed to remove staging directory", "path", staging, "error", rmErr)
		}
		return err
	}

	outPods := p.OutputPodsDir()
	if err := os.RemoveAll(outPods); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("delete %s: %w", outPods, err)
	}
	if err := os.Rename(staging, outPods); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("rename %s: %w", staging, err)
	}

	p.logger.Info("output complete", "project", p.name, "override", ovr.Name(), "path", outPods)
	return nil
}

// Export writes standalone pods for ovr into exportDir, which must not exist.
// Task pods go in exportDir/tasks.
func (p *Project) Export(ovr *pod.Override, exportDir string) error {
	exists, err := fileutil.Exists(exportDir)
	if err != nil {
		return fmt.Errorf("check %s: %w", exportDir, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDestinationExists, exportDir)
	}

	if p.defaultTags == nil {
		p.logger.Warn("exporting project without default tags", "project", p.name)
	}

	if err := p.outputPods(ovr, plugins.Export, exportDir); err != nil {
		return err
	}

	p.logger.Info("export complete", "project", p.name, "override", ovr.Name(), "path", exportDir)
	return nil
}

// outputPods runs every pod through merge, standalone, the op-specific
// update and the plugins, and writes it under dir.
func (p *Project) outputPods(ovr *pod.Override, op plugins.Operation, dir string) error {
	for _, pd := range p.pods {
		if err := p.outputPod(pd, ovr, op, dir); err != nil {
			return fmt.Errorf("pod %s: %w", pd.Name(), err)
		}
	}
	return nil
}

func (p *Project) outputPod(pd *pod.Pod, ovr *pod.Override, op plugins.Operation, dir string) error {
	typ, err := pd.PodType(ovr)
	if err != nil {
		return err
	}

	relPath := pd.RelPath()
	if op == plugins.Export && typ == pod.Task {
		relPath = filepath.Join("tasks", relPath)
	}
	outPath, err := fileutil.EnsureParent(filepath.Join(dir, relPath))
	if err != nil {
		return err
	}
	p.logger.Debug("outputting pod", "pod", pd.Name(), "type", typ.String(), "path", outPath)

	doc, err := pd.MergedFile(ovr)
	if err != nil {
		return err
	}
	if err := doc.MakeStandalone(p.PodsDir()); err != nil {
		return err
	}

	switch op {
	case plugins.Output:
		err = doc.UpdateForOutput(p)
	case plugins.Export:
		err = doc.UpdateForExport(p)
	default:
		err = fmt.Errorf("unknown operation %s", op)
	}
	if err != nil {
		return err
	}

	ctx := plugins.NewContext(p, ovr, pd)
	if err := p.Plugins().Transform(op, ctx, doc); err != nil {
		return err
	}

	return doc.WriteToPath(outPath)
}
