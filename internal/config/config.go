// Package config handles project discovery and CLI configuration.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CONDUCTOR_ prefix)
//  3. Config file (conductor.yml in the project root)
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultOverride is the override used when none is selected.
const DefaultOverride = "development"

// ErrNoProject is returned when no directory with a pods/ subdirectory is
// found above the working directory.
var ErrNoProject = errors.New("project root not found (no pods/ directory)")

// Config holds the CLI configuration.
type Config struct {
	// Override selects the pods/overrides/<name> overlay to apply.
	Override string `mapstructure:"override"`

	// ProjectName replaces the project name derived from the root directory.
	ProjectName string `mapstructure:"project-name"`

	// DefaultTags is the path of a default image tags file.
	DefaultTags string `mapstructure:"default-tags"`

	// OutputDir and SrcDir replace <root>/.conductor and <root>/src.
	OutputDir string `mapstructure:"output-dir"`
	SrcDir    string `mapstructure:"src-dir"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	NoColor   bool   `mapstructure:"no-color"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet"`

	// Root is the discovered project root. Empty outside a project.
	Root string `mapstructure:"-"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Override:  DefaultOverride,
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if c.Override == "" {
		return fmt.Errorf("override must not be empty")
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. Quiet forces "error".
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}
	return c.LogLevel
}

// RequireRoot returns the project root or ErrNoProject.
func (c *Config) RequireRoot() (string, error) {
	if c.Root == "" {
		return "", ErrNoProject
	}
	return c.Root, nil
}

// ResolvedOutputDir returns the output directory, defaulting to
// <root>/.conductor. Relative paths are taken from the root.
func (c *Config) ResolvedOutputDir() string {
	return c.resolve(c.OutputDir, ".conductor")
}

// ResolvedSrcDir returns the source directory, defaulting to <root>/src.
// Relative paths are taken from the root.
func (c *Config) ResolvedSrcDir() string {
	return c.resolve(c.SrcDir, "src")
}

func (c *Config) resolve(dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Root, dir)
}

// FindRoot searches upward from start for the project root, the first
// directory that contains a pods/ subdirectory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, "pods")); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// Load initialises configuration from flags, environment variables and an
// optional config file. Without an explicit configFile, conductor.yml is
// looked up in the project root found above the working directory. A fresh
// viper instance is used on every call.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	root, err := FindRoot(wd)
	if err != nil && !errors.Is(err, ErrNoProject) {
		return nil, err
	}

	if err := configureFile(v, configFile, root); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Root = root
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("override", d.Override)
	v.SetDefault("project-name", "")
	v.SetDefault("default-tags", "")
	v.SetDefault("output-dir", "")
	v.SetDefault("src-dir", "")
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("CONDUCTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func configureFile(v *viper.Viper, configFile, root string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}
		return nil
	}

	if root == "" {
		return nil
	}

	v.SetConfigName("conductor")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// bindFlags binds cmd's flags and the persistent flags of every ancestor.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}
	return nil
}

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}
	return Default()
}
