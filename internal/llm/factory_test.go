package llm

import "testing"

func TestNewProvider(t *testing.T) {
	// Empty provider means generative mode is disabled
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("empty provider should not error: %v", err)
	}
	if p != nil {
		t.Error("empty provider should return nil provider")
	}

	if _, err := NewProvider(Config{Provider: "skynet"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	ollama, err := NewProvider(Config{Provider: "ollama", Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("ollama provider failed: %v", err)
	}
	if ollama.Name() != "ollama" {
		t.Errorf("name = %s", ollama.Name())
	}

	openai, err := NewProvider(Config{Provider: "OpenAI", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("openai provider failed: %v", err)
	}
	if openai.Name() != "openai" {
		t.Errorf("name = %s", openai.Name())
	}

	anthropic, err := NewProvider(Config{Provider: "claude", APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("anthropic provider failed: %v", err)
	}
	if anthropic.Name() != "anthropic" {
		t.Errorf("name = %s", anthropic.Name())
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(modelLLMConfig())
	if cfg.Provider != "ollama" || cfg.Model != "mistral" || cfg.Timeout != 45 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
