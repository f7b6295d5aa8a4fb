package cli

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/recourse/internal/model"
)

func TestApplyViperConfig(t *testing.T) {
	defer viper.Reset()

	viper.Set("extraction.backend", model.BackendGenerative)
	viper.Set("llm.provider", "ollama")
	viper.Set("cache.enabled", false)
	viper.Set("cache.memory_ttl", "5m")
	viper.Set("concurrency.workers", 8)
	viper.Set("output.dir", "artifacts")

	cfg := model.DefaultConfig()
	applyViperConfig(cfg)

	if cfg.Extraction.Backend != model.BackendGenerative {
		t.Errorf("backend = %q, want generative", cfg.Extraction.Backend)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.LLM.Provider)
	}
	if cfg.Cache.Enabled {
		t.Error("cache.enabled false should be honored")
	}
	if cfg.Cache.MemoryTTL != 5*time.Minute {
		t.Errorf("memory ttl = %v, want 5m", cfg.Cache.MemoryTTL)
	}
	if cfg.Concurrency.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Concurrency.Workers)
	}
	if cfg.Output.Dir != "artifacts" {
		t.Errorf("output dir = %q, want artifacts", cfg.Output.Dir)
	}

	// Keys without viper values keep their defaults
	if cfg.Extraction.Fallback != model.FallbackLenient {
		t.Errorf("fallback = %q, want lenient default", cfg.Extraction.Fallback)
	}
}

func TestApplyViperConfig_NoValues(t *testing.T) {
	defer viper.Reset()

	cfg := model.DefaultConfig()
	applyViperConfig(cfg)

	want := model.DefaultConfig()
	if cfg.Extraction.Backend != want.Extraction.Backend {
		t.Errorf("backend changed without viper values: %q", cfg.Extraction.Backend)
	}
	if cfg.Cache.Enabled != want.Cache.Enabled {
		t.Error("cache.enabled changed without viper values")
	}
	if cfg.RateLimiting.RequestsPerSecond != want.RateLimiting.RequestsPerSecond {
		t.Error("rate limit changed without viper values")
	}
}

func TestBuildConfig_FlagOverridesViper(t *testing.T) {
	defer viper.Reset()
	defer func() {
		backend = ""
		llmProvider = ""
	}()

	viper.Set("extraction.backend", model.BackendGenerative)
	viper.Set("llm.provider", "ollama")

	backend = ""
	llmProvider = ""
	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Extraction.Backend != model.BackendGenerative {
		t.Errorf("backend = %q, want viper's generative", cfg.Extraction.Backend)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("provider = %q, want viper's ollama", cfg.LLM.Provider)
	}

	backend = model.BackendPattern
	cfg, err = buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Extraction.Backend != model.BackendPattern {
		t.Errorf("backend = %q, explicit flag must win over viper", cfg.Extraction.Backend)
	}
}
