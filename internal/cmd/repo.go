package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/ui"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the git repositories pods build from",
	Long: `Manage the git repositories referenced as build contexts by pods.

Cloned repositories live in src/<alias>. While a clone exists, output builds
from it instead of the remote URL.`,
}

var repoListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List repositories and whether they are cloned",
	Args:    cobra.NoArgs,
	RunE:    runRepoList,
}

var repoCloneCmd = &cobra.Command{
	Use:   "clone <alias>",
	Short: "Clone a repository into src/<alias>",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoClone,
}

func init() {
	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoCloneCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoList(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	if p.Repos().Len() == 0 {
		ui.Info("No pods build from git repositories")
		return nil
	}

	for _, r := range p.Repos().List() {
		state := "remote"
		if r.IsCloned(p.SrcDir()) {
			state = "cloned"
		}
		detail := fmt.Sprintf("%s  %s", state, r.URL())
		if r.Ref() != "" {
			detail += "  ref " + r.Ref()
		}
		ui.Item(r.Alias(), detail)
	}
	return nil
}

func runRepoClone(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	r, err := p.Repos().FindByAlias(args[0])
	if err != nil {
		return err
	}

	if r.IsCloned(p.SrcDir()) {
		ui.Info("%s is already cloned in %s", r.Alias(), r.Path(p.SrcDir()))
		return nil
	}

	ui.Info("Cloning %s into %s", r.URL(), r.Path(p.SrcDir()))
	if err := r.Clone(cmd.Context(), p.SrcDir(), cmd.ErrOrStderr()); err != nil {
		return err
	}

	ui.Success("Cloned %s", r.Alias())
	return nil
}
