package pod

import (
	"fmt"
	"sort"

	"github.com/docker/go-connections/nat"
)

// PublishedPorts summarizes a service's port mappings as
// "hostIP:hostPort->containerPort/proto" strings, sorted. Ports that are
// exposed without a host binding are listed as "containerPort/proto".
func (d *Document) PublishedPorts(service string) ([]string, error) {
	svc := d.Service(service)
	if svc == nil {
		return nil, nil
	}

	raw, _ := svc["ports"].([]any)
	specs := make([]string, 0, len(raw))
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			specs = append(specs, v)
		case int:
			specs = append(specs, fmt.Sprintf("%d", v))
		case map[string]any:
			spec := fmt.Sprintf("%v", v["target"])
			if published, ok := v["published"]; ok {
				spec = fmt.Sprintf("%v:%s", published, spec)
				if ip, ok := v["host_ip"].(string); ok && ip != "" {
					spec = ip + ":" + spec
				}
			}
			if proto, ok := v["protocol"].(string); ok && proto != "" {
				spec += "/" + proto
			}
			specs = append(specs, spec)
		default:
			return nil, fmt.Errorf("service %s: unsupported port entry %v", service, entry)
		}
	}

	exposed, bindings, err := nat.ParsePortSpecs(specs)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", service, err)
	}

	var result []string
	for port := range exposed {
		bound := bindings[port]
		published := false
		for _, b := range bound {
			if b.HostPort == "" {
				continue
			}
			published = true
			host := b.HostPort
			if b.HostIP != "" {
				host = b.HostIP + ":" + host
			}
			result = append(result, fmt.Sprintf("%s->%s", host, port))
		}
		if !published {
			result = append(result, string(port))
		}
	}
	sort.Strings(result)
	return result, nil
}
