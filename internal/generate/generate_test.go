package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	names := []string{}
	for _, g := range List() {
		names = append(names, g.Name)
		assert.NotEmpty(t, g.Target)
		assert.NotEmpty(t, g.Description)
	}
	assert.Equal(t, []string{"env", "gitignore"}, names)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		contains []string
	}{
		{
			name:     "env",
			data:     map[string]any{"name": "Rails.Hello"},
			contains: []string{"COMPOSE_PROJECT_NAME=rails_hello\n"},
		},
		{
			name:     "gitignore",
			data:     map[string]any{"name": "hello"},
			contains: []string{"for hello", "/.conductor/\n", "/src/\n"},
		},
		{
			name:     "gitignore",
			data:     map[string]any{"name": "hello", "outputDir": "build", "srcDir": "vendor/src"},
			contains: []string{"/build/\n", "/vendor/src/\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(tt.name, tt.data, &buf))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestRender_UnknownGenerator(t *testing.T) {
	err := Render("dockerfile", nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownGenerator)
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	data := map[string]any{"name": "hello"}

	path, err := Generate("env", data, root, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "COMPOSE_PROJECT_NAME=hello")

	t.Run("refuses to overwrite", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("KEEP=1\n"), 0644))

		_, err := Generate("env", data, root, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileExists)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "KEEP=1\n", string(content))
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := Generate("env", data, root, true)
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "COMPOSE_PROJECT_NAME=hello")
	})
}

func TestGenerate_UnknownGenerator(t *testing.T) {
	_, err := Generate("nope", nil, t.TempDir(), true)
	assert.ErrorIs(t, err, ErrUnknownGenerator)
}
