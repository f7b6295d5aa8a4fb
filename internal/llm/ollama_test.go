package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/recourse/internal/model"
)

func modelLLMConfig() model.LLMConfig {
	return model.LLMConfig{
		Provider: "ollama",
		Model:    "mistral",
		Timeout:  45,
	}
}

func TestOllamaProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("model = %s", req.Model)
		}
		if req.Stream {
			t.Error("streaming should be disabled")
		}
		if req.Format != "json" {
			t.Errorf("format = %s, want json", req.Format)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.1:8b",
			Response:        `  {"fills":[]}  `,
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       5,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompleteRequest{Prompt: "extract fields"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != `{"fills":[]}` {
		t.Errorf("expected trimmed response text, got %q", resp.Text)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("tokens = %d, want 15", resp.TokensUsed)
	}
}

func TestOllamaProvider_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompleteRequest{Prompt: "x"}); err == nil {
		t.Error("expected error when no model configured")
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompleteRequest{Prompt: "x"}); err == nil {
		t.Error("expected error for API failure")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("expected available against healthy server")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("expected unavailable after server shutdown")
	}
}
