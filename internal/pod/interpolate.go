package pod

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrMissingVariables is returned when an interpolation references variables
// that are unset and have no default.
var ErrMissingVariables = errors.New("missing variables")

// varPattern matches compose interpolations: $$, ${NAME}, ${NAME:-default},
// ${NAME-default}, ${NAME:?message}, ${NAME?message} and $NAME.
var varPattern = regexp.MustCompile(`\$(?:(\$)|\{([A-Za-z_][A-Za-z0-9_]*)(?:(:?[-?])([^}]*))?\}|([A-Za-z_][A-Za-z0-9_]*))`)

// LookupFunc resolves a variable name, reporting whether it is set.
type LookupFunc func(name string) (string, bool)

// Interpolate resolves compose-style variable references in s. The result is
// still valid compose input: an escaped "$$" is kept as-is and any "$" that
// comes from a substituted value is escaped again.
func Interpolate(s string, lookup LookupFunc) (string, error) {
	var missing []string

	result := varPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		if groups[1] != "" {
			return match
		}

		name, op, arg := groups[2], groups[3], groups[4]
		if name == "" {
			name = groups[5]
		}

		value, set := lookup(name)
		switch op {
		case ":-":
			if !set || value == "" {
				return EscapeDollar(arg)
			}
		case "-":
			if !set {
				return EscapeDollar(arg)
			}
		case ":?", "?":
			if !set || (op == ":?" && value == "") {
				if arg != "" {
					missing = append(missing, fmt.Sprintf("%s (%s)", name, arg))
				} else {
					missing = append(missing, name)
				}
				return match
			}
		default:
			if !set {
				missing = append(missing, name)
				return match
			}
		}

		return EscapeDollar(value)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: ${%s}", ErrMissingVariables, strings.Join(missing, "}, ${"))
	}

	return result, nil
}

// EscapeDollar doubles every $ so compose keeps the value literal.
func EscapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// InterpolateMap applies interpolation to all string values in a map
// recursively. Every missing variable in the tree is reported at once.
func InterpolateMap(data map[string]any, lookup LookupFunc) (map[string]any, error) {
	var errs []error

	result := make(map[string]any, len(data))
	for _, k := range sortedKeys(data) {
		interpolated, err := interpolateValue(data[k], lookup)
		if err != nil {
			errs = append(errs, fmt.Errorf("key %q: %w", k, err))
			continue
		}
		result[k] = interpolated
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}

func interpolateValue(value any, lookup LookupFunc) (any, error) {
	switch v := value.(type) {
	case string:
		return Interpolate(v, lookup)
	case map[string]any:
		return InterpolateMap(v, lookup)
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			interpolated, err := interpolateValue(item, lookup)
			if err != nil {
				return nil, err
			}
			result[i] = interpolated
		}
		return result, nil
	default:
		return value, nil
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
