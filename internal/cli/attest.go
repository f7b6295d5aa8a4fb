package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/recourse/internal/pipeline"
)

var (
	attester string
	role     string
)

// attestCmd represents the attest command
var attestCmd = &cobra.Command{
	Use:   "attest <case-dir>",
	Short: "Record clinician sign-off for a case",
	Long: `Attest records that a clinician reviewed the case answers. It refuses
when required fields are still missing or the answer set is invalid.
Packet export requires an attestation unless --draft is used.

Example:
  recourse attest cases/1001 --by "Dr. A. Rivera" --role "Attending physician"`,
	Args: cobra.ExactArgs(1),
	RunE: runAttest,
}

func init() {
	rootCmd.AddCommand(attestCmd)

	attestCmd.Flags().StringVar(&attester, "by", "", "attesting clinician name (required)")
	attestCmd.Flags().StringVar(&role, "role", "", "attesting clinician role")
	_ = attestCmd.MarkFlagRequired("by")
}

func runAttest(cmd *cobra.Command, args []string) error {
	caseDir := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	attestation, err := p.Attest(caseDir, attester, role)
	if err != nil {
		return fmt.Errorf("attest failed: %w", err)
	}

	fmt.Printf("✓ Attested by %s at %s\n", attestation.Attester,
		attestation.AttestedAt.Format("2006-01-02 15:04 UTC"))
	return nil
}
