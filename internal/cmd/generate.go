package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/conductor/internal/generate"
	"github.com/cameronsjo/conductor/internal/ui"
)

var generateForce bool

var generateCmd = &cobra.Command{
	Use:   "generate [name]",
	Short: "List generators or write one into the project root",
	Long: `Without a name, list the available generators. With a name, render
that generator into the project root. Existing files are kept unless
--force is given.

Examples:
  conductor generate
  conductor generate gitignore
  conductor generate env --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "overwrite existing files")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		ui.Header("Generators")
		for _, g := range generate.List() {
			ui.Item(g.Name, g.Target+"  "+g.Description)
		}
		return nil
	}

	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	path, err := generate.Generate(args[0], templateData(p), p.RootDir(), generateForce)
	if err != nil {
		return err
	}

	ui.Success("Wrote %s", path)
	return nil
}
