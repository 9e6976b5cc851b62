package pod

import (
	"fmt"
	"strings"
)

// UnionKeys are compose keys whose lists use set-union merge (no duplicates).
var UnionKeys = map[string]bool{
	"networks":   true,
	"depends_on": true,
	"env_file":   true,
}

// normalizedKeys are compose keys that accept either a list of KEY=VALUE
// strings or a mapping, and are always merged as mappings.
var normalizedKeys = map[string]bool{
	"environment": true,
	"labels":      true,
}

// DeepMerge recursively merges overlay into base and returns a new map.
// Neither input is modified. Merge semantics:
//   - UnionKeys (networks, depends_on, env_file): set union for lists
//   - environment/labels are normalized from list to map before merging
//   - Default: replace lists and scalars, recursive merge for dicts
func DeepMerge(base, overlay map[string]any) map[string]any {
	result := deepCopyMap(base)

	for key, overlayValue := range overlay {
		baseValue, exists := result[key]
		if !exists {
			result[key] = deepCopy(overlayValue)
			continue
		}

		if normalizedKeys[key] && isMapOrList(baseValue) && isMapOrList(overlayValue) {
			result[key] = DeepMerge(normalizeToDict(baseValue), normalizeToDict(overlayValue))
			continue
		}

		baseMap, baseIsMap := baseValue.(map[string]any)
		overlayMap, overlayIsMap := overlayValue.(map[string]any)
		if baseIsMap && overlayIsMap {
			result[key] = DeepMerge(baseMap, overlayMap)
			continue
		}

		baseList, baseIsList := toStringSlice(baseValue)
		overlayList, overlayIsList := toStringSlice(overlayValue)
		if baseIsList && overlayIsList && UnionKeys[key] {
			result[key] = stringSliceUnion(baseList, overlayList)
			continue
		}

		result[key] = deepCopy(overlayValue)
	}

	return result
}

func isMapOrList(value any) bool {
	switch value.(type) {
	case map[string]any, []any, []string:
		return true
	default:
		return false
	}
}

// normalizeToDict converts list-style environment/labels to dict format.
// Input: ["FOO=bar", "BAZ"] -> {"FOO": "bar", "BAZ": nil}
// Input: {"FOO": "bar"} -> {"FOO": "bar"} (unchanged)
// A nil value means "pass through from the host environment".
func normalizeToDict(value any) map[string]any {
	result := make(map[string]any)

	switch v := value.(type) {
	case map[string]any:
		for k, val := range v {
			if val == nil {
				result[k] = nil
				continue
			}
			result[k] = fmt.Sprintf("%v", val)
		}
	case []any:
		for _, item := range v {
			addListEntry(result, fmt.Sprintf("%v", item))
		}
	case []string:
		for _, item := range v {
			addListEntry(result, item)
		}
	}

	return result
}

func addListEntry(m map[string]any, entry string) {
	if idx := strings.Index(entry, "="); idx > 0 {
		m[entry[:idx]] = entry[idx+1:]
		return
	}
	if entry != "" {
		m[entry] = nil
	}
}

// toStringSlice attempts to convert a value to []string.
// Returns the slice and true if successful, nil and false otherwise.
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result[i] = s
		}
		return result, true
	default:
		return nil, false
	}
}

// stringSliceUnion returns the union of two string slices (no duplicates).
func stringSliceUnion(a, b []string) []any {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]any, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	return result
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	return deepCopy(m).(map[string]any)
}

// deepCopy creates a deep copy of any value decoded from YAML.
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = deepCopy(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = deepCopy(val)
		}
		return result
	case []string:
		result := make([]string, len(v))
		copy(result, v)
		return result
	default:
		// Primitive types are immutable, return as-is
		return value
	}
}
