package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/recourse/internal/pipeline"
)

var draft bool

// packetCmd represents the packet command
var packetCmd = &cobra.Command{
	Use:   "packet <case-dir>",
	Short: "Assemble the submission packet",
	Long: `Packet assembles the case into submission artifacts:
- out/packet.md: human-readable packet with answers, denial record and appeal
- out/packet.json: machine-readable export of the same content

The case must be attested first; --draft bypasses the gate and marks
the output accordingly.

Example:
  recourse packet cases/1001
  recourse packet cases/1001 --draft`,
	Args: cobra.ExactArgs(1),
	RunE: runPacket,
}

func init() {
	rootCmd.AddCommand(packetCmd)

	packetCmd.Flags().BoolVar(&draft, "draft", false, "export without attestation, marked as draft")
}

func runPacket(cmd *cobra.Command, args []string) error {
	caseDir := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := p.BuildPacket(caseDir, draft)
	if err != nil {
		return fmt.Errorf("packet failed: %w", err)
	}

	if result.Draft {
		fmt.Println("⚠ Draft packet (not attested)")
	}
	fmt.Printf("✓ Wrote %s\n", result.MarkdownPath)
	fmt.Printf("✓ Wrote %s\n", result.JSONPath)
	return nil
}
