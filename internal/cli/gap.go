package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/recourse/internal/pipeline"
)

// gapCmd represents the gap command
var gapCmd = &cobra.Command{
	Use:   "gap <case-dir>",
	Short: "Reconcile denial requests against current answers",
	Long: `Gap re-checks the stored denial record against the case's current
answers and reports which requested items are now covered.

Example:
  recourse gap cases/1001`,
	Args: cobra.ExactArgs(1),
	RunE: runGap,
}

func init() {
	rootCmd.AddCommand(gapCmd)
}

func runGap(cmd *cobra.Command, args []string) error {
	caseDir := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	items, err := p.GapReport(caseDir)
	if err != nil {
		return fmt.Errorf("gap report failed: %w", err)
	}

	p.Renderer().GapSummary(items)
	return nil
}
