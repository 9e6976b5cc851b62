package pod

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFileRef is one entry of a service's env_file list.
type envFileRef struct {
	path     string
	required bool
}

// parseEnvFileRefs accepts every env_file form compose understands: a single
// path, a list of paths, or a list of {path, required} mappings.
func parseEnvFileRefs(value any) ([]envFileRef, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []envFileRef{{path: v, required: true}}, nil
	case []any:
		refs := make([]envFileRef, 0, len(v))
		for _, item := range v {
			switch entry := item.(type) {
			case string:
				refs = append(refs, envFileRef{path: entry, required: true})
			case map[string]any:
				path, _ := entry["path"].(string)
				if path == "" {
					return nil, fmt.Errorf("env_file entry without path")
				}
				required := true
				if r, ok := entry["required"].(bool); ok {
					required = r
				}
				refs = append(refs, envFileRef{path: path, required: required})
			default:
				return nil, fmt.Errorf("unsupported env_file entry %v", item)
			}
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported env_file value %v", value)
	}
}

// readEnvFiles loads env files in order; later files override earlier ones.
// Relative paths are resolved against baseDir.
func readEnvFiles(baseDir string, refs []envFileRef) (map[string]string, error) {
	vars := make(map[string]string)

	for _, ref := range refs {
		path := resolvePath(baseDir, ref.path)
		fileVars, err := godotenv.Read(path)
		if err != nil {
			if !ref.required && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	return vars, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
