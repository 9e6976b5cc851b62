package plugins

import "github.com/cameronsjo/conductor/internal/pod"

// Labels added to every service.
const (
	LabelProject  = "io.conductor.project"
	LabelOverride = "io.conductor.override"
	LabelPod      = "io.conductor.pod"
)

type labelsPlugin struct{}

func newLabelsPlugin() *labelsPlugin {
	return &labelsPlugin{}
}

func (p *labelsPlugin) Name() string {
	return "labels"
}

func (p *labelsPlugin) Transform(_ Operation, ctx *Context, doc *pod.Document) error {
	for _, name := range doc.ServiceNames() {
		labels := doc.Labels(name)
		labels[LabelProject] = ctx.Project().Name()
		labels[LabelOverride] = ctx.Override().Name()
		labels[LabelPod] = ctx.Pod().Name()
	}
	return nil
}
