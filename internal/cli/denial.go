package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/recourse/internal/pipeline"
)

var letterPath string

// denialCmd represents the denial command
var denialCmd = &cobra.Command{
	Use:   "denial <case-dir>",
	Short: "Parse a denial letter and draft an appeal",
	Long: `Denial parses a payer denial letter into a structured record:
- Extracts denial reasons, requested items, reference id and deadline text
- Reconciles requested items against the current answers
- Drafts an appeal letter with citations into the denial text
- Replaces any previous denial record for the case

Example:
  recourse denial cases/1001
  recourse denial cases/1001 --letter /tmp/denial-2.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runDenial,
}

func init() {
	rootCmd.AddCommand(denialCmd)

	denialCmd.Flags().StringVar(&letterPath, "letter", "", "denial letter path (default: <case-dir>/denial.txt)")
}

func runDenial(cmd *cobra.Command, args []string) error {
	caseDir := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Case directory: %s\n", caseDir)
		if letterPath != "" {
			fmt.Fprintf(os.Stderr, "Letter: %s\n", letterPath)
		}
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := p.AnalyzeDenial(caseDir, letterPath)
	if err != nil {
		return fmt.Errorf("denial analysis failed: %w", err)
	}

	p.Renderer().DenialSummary(result)
	return nil
}
