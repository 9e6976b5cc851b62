package plugins

import (
	"log/slog"

	"github.com/cameronsjo/conductor/internal/pod"
)

type defaultTagsPlugin struct {
	logger *slog.Logger
}

func newDefaultTagsPlugin(logger *slog.Logger) *defaultTagsPlugin {
	return &defaultTagsPlugin{logger: logger}
}

func (p *defaultTagsPlugin) Name() string {
	return "default_tags"
}

// Transform pins untagged service images to their default tag.
func (p *defaultTagsPlugin) Transform(_ Operation, ctx *Context, doc *pod.Document) error {
	defaults := ctx.Project().DefaultTags()
	if defaults == nil {
		return nil
	}

	for _, name := range doc.ServiceNames() {
		svc := doc.Service(name)
		image, ok := svc["image"].(string)
		if !ok {
			continue
		}
		if tagged, applied := defaults.Apply(image); applied {
			p.logger.Debug("applied default tag", "pod", ctx.Pod().Name(), "service", name, "image", tagged)
			svc["image"] = tagged
		}
	}
	return nil
}
