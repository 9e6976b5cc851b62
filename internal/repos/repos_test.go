package repos

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/conductor/internal/pod"
)

func loadPods(t *testing.T, files map[string]string) []*pod.Pod {
	t.Helper()
	podsDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(podsDir, name+".yml"), []byte(content), 0644))
	}

	var pods []*pod.Pod
	for name := range files {
		p, err := pod.New(podsDir, name, nil)
		require.NoError(t, err)
		pods = append(pods, p)
	}
	return pods
}

func TestSplitContext(t *testing.T) {
	tests := []struct {
		context string
		url     string
		ref     string
	}{
		{"https://github.com/example/app.git", "https://github.com/example/app.git", ""},
		{"https://github.com/example/app.git#main", "https://github.com/example/app.git", "main"},
		{"git@github.com:example/app.git#v2:services/web", "git@github.com:example/app.git", "v2"},
		{"https://github.com/example/app.git#:services/web", "https://github.com/example/app.git", ""},
	}

	for _, tt := range tests {
		t.Run(tt.context, func(t *testing.T) {
			url, ref := SplitContext(tt.context)
			assert.Equal(t, tt.url, url)
			assert.Equal(t, tt.ref, ref)
		})
	}
}

func TestAliasFor(t *testing.T) {
	assert.Equal(t, "rails_hello", AliasFor("https://github.com/example/rails_hello.git"))
	assert.Equal(t, "worker", AliasFor("git@github.com:example/worker.git"))
	assert.Equal(t, "api", AliasFor("ssh://git@example.com/team/api/"))
	assert.Equal(t, "tool", AliasFor("git@example.com:tool.git"))
}

func TestNew(t *testing.T) {
	pods := loadPods(t, map[string]string{
		"frontend": `
services:
  web:
    build: https://github.com/example/rails_hello.git
  assets:
    build: https://github.com/example/rails_hello.git#main:assets
`,
		"worker": `
services:
  worker:
    build:
      context: git@github.com:example/worker.git
  local:
    build: ../src/local
`,
	})

	r, err := New(pods)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	list := r.List()
	assert.Equal(t, "rails_hello", list[0].Alias())
	assert.Equal(t, "https://github.com/example/rails_hello.git", list[0].URL())
	assert.Equal(t, "worker", list[1].Alias())

	repo, ok := r.Find("https://github.com/example/rails_hello.git#main:assets")
	require.True(t, ok)
	assert.Equal(t, "rails_hello", repo.Alias())

	_, ok = r.Find("../src/local")
	assert.False(t, ok)

	repo, err = r.FindByAlias("worker")
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:example/worker.git", repo.URL())

	_, err = r.FindByAlias("nope")
	assert.ErrorIs(t, err, ErrUnknownRepo)
}

func TestNew_DuplicateAlias(t *testing.T) {
	pods := loadPods(t, map[string]string{
		"a": "services: {web: {build: 'https://github.com/one/app.git'}}\n",
		"b": "services: {web: {build: 'https://github.com/two/app.git'}}\n",
	})

	_, err := New(pods)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateAlias)
}

func TestNew_NoPods(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.List())
}

func TestLocalCheckout(t *testing.T) {
	pods := loadPods(t, map[string]string{
		"frontend": "services: {web: {build: 'https://github.com/example/rails_hello.git#main:web'}}\n",
	})
	r, err := New(pods)
	require.NoError(t, err)

	srcDir := t.TempDir()
	const ctx = "https://github.com/example/rails_hello.git#main:web"

	_, ok := r.LocalCheckout(srcDir, ctx)
	assert.False(t, ok, "not cloned yet")

	repo, ok := r.Find(ctx)
	require.True(t, ok)
	assert.Equal(t, "main", repo.Ref())
	assert.False(t, repo.IsCloned(srcDir))

	_, err = git.PlainInit(repo.Path(srcDir), false)
	require.NoError(t, err)
	assert.True(t, repo.IsCloned(srcDir))

	dir, ok := r.LocalCheckout(srcDir, ctx)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(srcDir, "rails_hello", "web"), dir)

	dir, ok = r.LocalCheckout(srcDir, "https://github.com/example/rails_hello.git")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(srcDir, "rails_hello"), dir)
}

func TestClone_RefusesExistingDirectory(t *testing.T) {
	srcDir := t.TempDir()
	repo := &Repo{url: "https://github.com/example/app.git", alias: "app"}
	require.NoError(t, os.MkdirAll(repo.Path(srcDir), 0755))

	err := repo.Clone(context.Background(), srcDir, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
}
