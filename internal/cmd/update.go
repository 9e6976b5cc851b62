package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/ui"
	"github.com/cameronsjo/conductor/internal/update"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"upgrade", "selfupdate"},
	Short:   "Update conductor to the latest version",
	Long: `Update conductor to the latest version from GitHub releases.

This command will:
1. Check for a newer version on GitHub
2. Download the appropriate binary for your platform
3. Replace the current binary with the new version

Examples:
  conductor update           # Update to latest version
  conductor update --check   # Check for updates without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var checkOnly bool

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ui.Info("Current version: %s (%s)", version, update.GetPlatformInfo())

	if update.IsDevBuild(version) {
		ui.Warning("Development build, not checking for updates")
		return nil
	}

	ui.Info("Checking for updates...")

	if checkOnly {
		release, available, err := update.CheckForUpdate(cmd.Context(), version)
		if err != nil {
			return err
		}
		if !available {
			ui.Success("You're running the latest version!")
			return nil
		}

		ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
		ui.Info("To update, run: conductor update")
		printChangelog(release.Changelog)
		return nil
	}

	release, err := update.Update(cmd.Context(), version)
	if err != nil {
		return err
	}
	if release == nil {
		ui.Success("You're already running the latest version!")
		return nil
	}

	ui.Success("Successfully updated to version %s!", release.Version)
	printChangelog(release.Changelog)
	return nil
}

// printChangelog prints the first lines of release notes.
func printChangelog(changelog string) {
	if changelog == "" {
		return
	}

	const maxLines = 10
	ui.Header("What's new:")
	lines := strings.Split(changelog, "\n")
	for _, line := range lines[:min(len(lines), maxLines)] {
		ui.Plain("  %s", line)
	}
	if len(lines) > maxLines {
		ui.Plain("  ... (%d more lines)", len(lines)-maxLines)
	}
}
