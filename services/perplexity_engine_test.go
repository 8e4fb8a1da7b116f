package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/services"
)

func perplexityTestConfig(baseURL string) *config.Config {
	return &config.Config{
		PerplexityAPIKey: "test-key",
		PerplexityEngine: config.EngineConfig{
			Model:   "llama-3.1-sonar-large-128k-online",
			BaseURL: baseURL,
		},
		EngineTimeout: 5 * time.Second,
	}
}

func TestPerplexityEngineRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		messages := payload["messages"].([]interface{})
		if len(messages) != 2 {
			t.Errorf("expected system + user message, got %d", len(messages))
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "llama-3.1-sonar-large-128k-online",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "TestBrand leads the market."}},
			},
			"citations": []string{"https://example.com/a", "https://example.com/b"},
			"usage":     map[string]int{"prompt_tokens": 20, "completion_tokens": 10},
		})
	}))
	defer server.Close()

	engine := services.NewPerplexityEngine(perplexityTestConfig(server.URL), services.NewCostService())
	if engine.Name() != "perplexity" {
		t.Errorf("name = %q", engine.Name())
	}

	resp, err := engine.Run(context.Background(), "What is the best testing tool?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if resp.RawText != "TestBrand leads the market." {
		t.Errorf("raw text = %q", resp.RawText)
	}
	if resp.ModelVersion != "llama-3.1-sonar-large-128k-online" {
		t.Errorf("model version = %q", resp.ModelVersion)
	}
	if len(resp.Citations) != 2 {
		t.Errorf("citations = %v", resp.Citations)
	}
	if resp.InputTokens != 20 || resp.OutputTokens != 10 {
		t.Errorf("tokens = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if resp.Cost <= 0 {
		t.Error("cost should be calculated")
	}
}

func TestPerplexityEngineErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	engine := services.NewPerplexityEngine(perplexityTestConfig(server.URL), services.NewCostService())
	if _, err := engine.Run(context.Background(), "query"); err == nil {
		t.Fatal("expected an error for non-200 status")
	}
}

func TestPerplexityEngineNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	engine := services.NewPerplexityEngine(perplexityTestConfig(server.URL), services.NewCostService())
	if _, err := engine.Run(context.Background(), "query"); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}
