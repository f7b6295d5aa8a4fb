package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/recourse/internal/model"
	"github.com/ppiankov/recourse/internal/pipeline"
)

var (
	backend     string
	strict      bool
	noCache     bool
	timeout     time.Duration
	llmProvider string
	llmModel    string
)

// autofillCmd represents the autofill command
var autofillCmd = &cobra.Command{
	Use:   "autofill <case-dir>",
	Short: "Draft questionnaire answers from case evidence",
	Long: `Autofill extracts questionnaire field values from the evidence
documents in a case directory and merges draft answers:
- Reads evidence/ in filename order
- Extracts each template field with a citation back to its source
- Merges drafts into answers.yaml without touching clinician-entered values

Example:
  recourse autofill cases/1001
  recourse autofill cases/1001 --backend generative --llm-provider openai
  recourse autofill cases/1001 --backend generative --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runAutofill,
}

func init() {
	rootCmd.AddCommand(autofillCmd)

	autofillCmd.Flags().StringVar(&backend, "backend", "", "extraction backend: pattern, generative (default pattern)")
	autofillCmd.Flags().BoolVar(&strict, "strict", false, "fail instead of falling back to patterns when model output is unparseable")
	autofillCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache (force fresh extraction)")
	autofillCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall extraction timeout")

	// LLM flags
	autofillCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider: openai, anthropic, ollama (default openai)")
	autofillCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runAutofill(cmd *cobra.Command, args []string) error {
	caseDir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Case directory: %s\n", caseDir)
		fmt.Fprintf(os.Stderr, "Backend: %s\n", cfg.Extraction.Backend)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := p.Autofill(ctx, caseDir)
	if err != nil {
		return fmt.Errorf("autofill failed: %w", err)
	}

	p.Renderer().AutofillSummary(result)
	return nil
}

// buildConfig assembles the effective configuration. Priority order is
// flags, then RECOURSE_* environment variables and the config file via
// viper, then defaults.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	applyViperConfig(cfg)

	cfg.Output.Verbose = verbose
	if noCache {
		cfg.Cache.Enabled = false
	}
	if templatesDir != "" {
		cfg.Templates.Dir = templatesDir
	}

	if backend != "" {
		cfg.Extraction.Backend = backend
	}
	if strict {
		cfg.Extraction.Fallback = model.FallbackStrict
	}

	if cfg.Extraction.Backend == model.BackendGenerative {
		if llmProvider != "" {
			cfg.LLM.Provider = llmProvider
		}
		if cfg.LLM.Provider == "" {
			cfg.LLM.Provider = "openai"
		}
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}

		// Get API key from environment unless the config file carries one
		switch cfg.LLM.Provider {
		case "openai":
			if cfg.LLM.APIKey == "" {
				cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			}
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			if cfg.LLM.APIKey == "" {
				cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			}
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

// applyViperConfig overlays config-file and environment values onto the
// defaults, below flags in priority
func applyViperConfig(cfg *model.Config) {
	if v := viper.GetString("extraction.backend"); v != "" {
		cfg.Extraction.Backend = v
	}
	if v := viper.GetString("extraction.fallback"); v != "" {
		cfg.Extraction.Fallback = v
	}
	if v := viper.GetInt("extraction.max_doc_chars"); v > 0 {
		cfg.Extraction.MaxDocChars = v
	}

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetDuration("cache.memory_ttl"); v > 0 {
		cfg.Cache.MemoryTTL = v
	}
	if v := viper.GetDuration("cache.disk_ttl"); v > 0 {
		cfg.Cache.DiskTTL = v
	}

	if v := viper.GetInt("concurrency.workers"); v > 0 {
		cfg.Concurrency.Workers = v
	}
	if v := viper.GetFloat64("rate_limiting.requests_per_second"); v > 0 {
		cfg.RateLimiting.RequestsPerSecond = v
	}
	if v := viper.GetInt("rate_limiting.burst_size"); v > 0 {
		cfg.RateLimiting.BurstSize = v
	}

	if v := viper.GetString("templates.dir"); v != "" {
		cfg.Templates.Dir = v
	}
	if v := viper.GetString("output.dir"); v != "" {
		cfg.Output.Dir = v
	}
}
