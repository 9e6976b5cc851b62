package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalSymlinks resolves symlinks for path comparison (macOS /var -> /private/var).
func evalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// newTestRootCmd mirrors the real root command's persistent flags.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.StringP("override", "o", DefaultOverride, "")
	pf.StringP("project-name", "p", "", "")
	pf.String("default-tags", "", "")
	pf.String("log-level", LogLevelInfo, "")
	pf.String("log-format", LogFormatText, "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")
	return cmd
}

// chdir switches to dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(original) })
}

func makeProject(t *testing.T) string {
	t.Helper()
	root := evalSymlinks(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pods"), 0755))
	return root
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultOverride, cfg.Override)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.Quiet)
}

func TestValidate(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		cfg := Default()
		cfg.LogLevel = lvl
		assert.NoError(t, cfg.Validate(), "level=%s", lvl)
	}

	cfg := Default()
	cfg.LogLevel = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")

	cfg = Default()
	cfg.LogFormat = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid log format")

	cfg = Default()
	cfg.Override = ""
	assert.ErrorContains(t, cfg.Validate(), "override")
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = LogLevelDebug
	assert.Equal(t, LogLevelDebug, cfg.EffectiveLogLevel())

	cfg.Quiet = true
	assert.Equal(t, LogLevelError, cfg.EffectiveLogLevel())
}

func TestResolvedDirs(t *testing.T) {
	cfg := Default()
	cfg.Root = "/work/hello"
	assert.Equal(t, filepath.Join("/work/hello", ".conductor"), cfg.ResolvedOutputDir())
	assert.Equal(t, filepath.Join("/work/hello", "src"), cfg.ResolvedSrcDir())

	cfg.OutputDir = "/tmp/out"
	cfg.SrcDir = "/tmp/src"
	assert.Equal(t, "/tmp/out", cfg.ResolvedOutputDir())
	assert.Equal(t, "/tmp/src", cfg.ResolvedSrcDir())

	cfg.OutputDir = "build"
	assert.Equal(t, filepath.Join("/work/hello", "build"), cfg.ResolvedOutputDir())
}

func TestFindRoot(t *testing.T) {
	root := makeProject(t)
	sub := filepath.Join(root, "pods", "overrides", "development")
	require.NoError(t, os.MkdirAll(sub, 0755))

	found, err := FindRoot(sub)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	found, err = FindRoot(root)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindRoot_NotFound(t *testing.T) {
	_, err := FindRoot(evalSymlinks(t, t.TempDir()))
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestRequireRoot(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireRoot()
	assert.ErrorIs(t, err, ErrNoProject)

	cfg.Root = "/work/hello"
	root, err := cfg.RequireRoot()
	require.NoError(t, err)
	assert.Equal(t, "/work/hello", root)
}

func TestLoad_Defaults(t *testing.T) {
	root := makeProject(t)
	chdir(t, root)

	cfg, err := Load(newTestRootCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultOverride, cfg.Override)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, root, cfg.Root)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_OutsideProject(t *testing.T) {
	chdir(t, evalSymlinks(t, t.TempDir()))

	cfg, err := Load(newTestRootCmd(), "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Root)
}

func TestLoad_ProjectConfigFile(t *testing.T) {
	root := makeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "conductor.yml"), []byte("override: production\nproject-name: hi\n"), 0644))
	chdir(t, filepath.Join(root, "pods"))

	cfg, err := Load(newTestRootCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Override)
	assert.Equal(t, "hi", cfg.ProjectName)
	assert.Equal(t, filepath.Join(root, "conductor.yml"), cfg.ConfigFile)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	chdir(t, makeProject(t))
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: debug\n"), 0644))

	cfg, err := Load(newTestRootCmd(), path)
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)

	_, err = Load(newTestRootCmd(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoad_Precedence(t *testing.T) {
	root := makeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "conductor.yml"), []byte("override: production\nlog-level: warn\n"), 0644))
	chdir(t, root)

	t.Setenv("CONDUCTOR_OVERRIDE", "test")

	cmd := newTestRootCmd()
	cfg, err := Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Override, "env beats file")
	assert.Equal(t, LogLevelWarn, cfg.LogLevel)

	require.NoError(t, cmd.PersistentFlags().Set("override", "development"))
	cfg, err = Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Override, "flag beats env")
}

func TestLoad_InvalidValue(t *testing.T) {
	chdir(t, makeProject(t))
	t.Setenv("CONDUCTOR_LOG_LEVEL", "verbose")

	_, err := Load(newTestRootCmd(), "")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := &Config{Override: "production", Root: "/srv/app"}
	ctx := NewContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
