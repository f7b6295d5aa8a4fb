package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/recourse/internal/pipeline"
	"github.com/ppiankov/recourse/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Autofill multiple case directories in parallel",
	Long: `Batch autofills multiple cases concurrently:
- Read case directory paths from input file (one per line)
- Process cases in parallel with configurable worker count
- Merge draft answers and write per-case artifacts as usual

Example:
  recourse batch cases.txt
  recourse batch cases.txt --concurrency 8
  recourse batch cases.txt --backend generative --llm-provider ollama`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config, else CPU count)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with autofill
	batchCmd.Flags().StringVar(&backend, "backend", "", "extraction backend: pattern, generative (default pattern)")
	batchCmd.Flags().BoolVar(&strict, "strict", false, "fail instead of falling back to patterns when model output is unparseable")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache (force fresh extraction)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider: openai, anthropic, ollama (default openai)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = runtime.NumCPU()
	}
	workers := cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", workers)
	fmt.Fprintf(os.Stderr, "Backend:    %s\n", cfg.Extraction.Backend)
	fmt.Fprintln(os.Stderr)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.CaseDir, result.Error)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s: %s\n", result.CaseDir, result.Summary)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d cases\n", len(results))
	fmt.Fprintf(os.Stderr, "Success:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures: %d\n", failureCount)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d cases failed", failureCount, len(results))
	}

	return nil
}
