package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/recourse/internal/pipeline"
)

// appealCmd represents the appeal command
var appealCmd = &cobra.Command{
	Use:   "appeal <case-dir>",
	Short: "Recompose the appeal letter from current answers",
	Long: `Appeal rebuilds the appeal letter from the stored denial record and
the case's current answers, picking up clinician edits made since the
denial was analyzed.

Example:
  recourse appeal cases/1001`,
	Args: cobra.ExactArgs(1),
	RunE: runAppeal,
}

func init() {
	rootCmd.AddCommand(appealCmd)
}

func runAppeal(cmd *cobra.Command, args []string) error {
	caseDir := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	letter, err := p.Appeal(caseDir)
	if err != nil {
		return fmt.Errorf("appeal failed: %w", err)
	}

	fmt.Println(letter)
	return nil
}
