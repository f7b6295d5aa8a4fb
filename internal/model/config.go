package model

import "time"

// Config is the full recourse configuration tree
type Config struct {
	Extraction   ExtractionConfig   `yaml:"extraction"`
	LLM          LLMConfig          `yaml:"llm"`
	Cache        CacheConfig        `yaml:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Templates    TemplatesConfig    `yaml:"templates"`
	Output       OutputConfig       `yaml:"output"`
}

// Backend names for the field extraction engine
const (
	BackendPattern    = "pattern"
	BackendGenerative = "generative"
)

// Fallback policies for the generative backend
const (
	FallbackLenient = "lenient" // Silently degrade to the pattern backend
	FallbackStrict  = "strict"  // Surface unparseable model output as an error
)

// ExtractionConfig controls the field extraction engine
type ExtractionConfig struct {
	Backend     string `yaml:"backend"`       // pattern | generative
	Fallback    string `yaml:"fallback"`      // lenient | strict
	MaxDocChars int    `yaml:"max_doc_chars"` // Per-document prompt prefix bound
}

// LLMConfig configures the generative backend provider
type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// CacheConfig controls result caching for extraction and denial parsing
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitingConfig throttles generative backend calls per provider host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// TemplatesConfig points at additional service-line template files
type TemplatesConfig struct {
	Dir string `yaml:"dir,omitempty"` // Optional directory of *.yaml templates
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	Dir     string `yaml:"dir"` // Per-case output subdirectory
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Backend:     BackendPattern,
			Fallback:    FallbackLenient,
			MaxDocChars: 3000,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 1000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // Resolved to ~/.recourse/cache when empty
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         2,
		},
		Output: OutputConfig{
			Verbose: false,
			Dir:     "out",
		},
	}
}
