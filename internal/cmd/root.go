// Package cmd provides the CLI commands for conductor.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/config"
	"github.com/cameronsjo/conductor/internal/logging"
	"github.com/cameronsjo/conductor/internal/ui"
)

// version is set at build time with -ldflags "-X .../internal/cmd.version=...".
var version = "dev"

// configFile is the --config flag.
var configFile string

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Compose multi-pod docker projects across environments",
	Long: `conductor - orchestrate docker compose projects made of pods

A project is a directory containing pods/, one compose file per pod, and
pods/overrides/<name>/ overlays that adapt those pods to an environment.

BUILD
  output                Merge pods for the override into .conductor/pods
  export <dir>          Write standalone pods for deployment (tasks/ for task pods)

INSPECT
  pods                  List pods, their type and published ports
  overrides             List overrides
  plugins               Show the plugin chain
  repo list             List git repositories pods build from

RUN
  up [service...]       Output, then docker compose up -d
  down                  Output, then docker compose down
  run <task> [args...]  Output, then run a task pod once
  ps                    Show the project's containers

PROJECT
  repo clone <alias>    Clone a build repository into src/
  generate [name]       Write scaffolding files (.gitignore, .env)

TOOLING
  doctor                Check that docker and the project are ready
  update                Update conductor from GitHub releases
  version               Show version information`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd, configFile)
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}

		if cfg.NoColor {
			ui.DisableColor(true)
		}
		ui.SetOutput(cmd.OutOrStdout())
		ui.SetErrorOutput(cmd.ErrOrStderr())

		logger := logging.Setup(cfg, cmd.ErrOrStderr())

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = config.NewContext(ctx, cfg)
		ctx = logging.NewContext(ctx, logger)
		cmd.SetContext(ctx)

		logger.Debug("configuration loaded",
			slog.String("root", cfg.Root),
			slog.String("override", cfg.Override),
			slog.String("configFile", cfg.ConfigFile),
		)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error("%v", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: conductor.yml in the project root)")
	pf.StringP("override", "o", config.DefaultOverride, "override to apply (pods/overrides/<name>)")
	pf.StringP("project-name", "p", "", "project name (default: project directory name)")
	pf.String("default-tags", "", "file of default image tags")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "only log errors")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	rootCmd.SetVersionTemplate("conductor version {{.Version}}\n")
}
