package plugins

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/conductor/internal/pod"
)

// SecretsFile is the sops-encrypted secrets file name, looked up in the pods
// directory and in each override directory.
const SecretsFile = "secrets.sops.yaml"

// DecryptFunc returns the cleartext YAML of a sops-encrypted file.
type DecryptFunc func(path string) ([]byte, error)

func sopsDecrypt(path string) ([]byte, error) {
	return decrypt.File(path, "yaml")
}

// secretsPlugin injects secrets into service environments. Secrets files map
// pod name to service name to variables:
//
//	frontend:
//	  web:
//	    SECRET_KEY_BASE: ...
//
// The override's file wins over the project-wide one. Secrets are never
// written into exports.
type secretsPlugin struct {
	podsDir string
	decrypt DecryptFunc
	cache   map[string]map[string]any
}

func newSecretsPlugin(project Project, fn DecryptFunc) (*secretsPlugin, bool, error) {
	podsDir := project.PodsDir()

	matches, err := filepath.Glob(filepath.Join(podsDir, "overrides", "*", SecretsFile))
	if err != nil {
		return nil, false, fmt.Errorf("find secrets: %w", err)
	}
	if _, err := os.Stat(filepath.Join(podsDir, SecretsFile)); err == nil {
		matches = append(matches, filepath.Join(podsDir, SecretsFile))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("stat %s: %w", filepath.Join(podsDir, SecretsFile), err)
	}

	if len(matches) == 0 {
		return nil, false, nil
	}

	return &secretsPlugin{
		podsDir: podsDir,
		decrypt: fn,
		cache:   make(map[string]map[string]any),
	}, true, nil
}

func (p *secretsPlugin) Name() string {
	return "secrets"
}

func (p *secretsPlugin) Transform(op Operation, ctx *Context, doc *pod.Document) error {
	if op != Output {
		return nil
	}

	files := []string{
		filepath.Join(p.podsDir, SecretsFile),
		filepath.Join(ctx.Override().Dir(p.podsDir), SecretsFile),
	}

	for _, file := range files {
		secrets, err := p.load(file)
		if err != nil {
			return err
		}

		services, _ := secrets[ctx.Pod().Name()].(map[string]any)
		for _, name := range doc.ServiceNames() {
			vars, _ := services[name].(map[string]any)
			if len(vars) == 0 {
				continue
			}
			env := doc.Environment(name)
			for k, v := range vars {
				env[k] = pod.EscapeDollar(fmt.Sprintf("%v", v))
			}
		}
	}
	return nil
}

// load decrypts a secrets file once. A missing file has no secrets.
func (p *secretsPlugin) load(path string) (map[string]any, error) {
	if secrets, ok := p.cache[path]; ok {
		return secrets, nil
	}

	var secrets map[string]any
	if _, err := os.Stat(path); err == nil {
		cleartext, err := p.decrypt(path)
		if err != nil {
			return nil, fmt.Errorf("decrypt %s: %w", path, err)
		}
		if err := yaml.Unmarshal(cleartext, &secrets); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	p.cache[path] = secrets
	return secrets, nil
}
