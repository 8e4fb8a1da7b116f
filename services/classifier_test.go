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

func classifierTestConfig(baseURL string, timeout time.Duration) *config.Config {
	return &config.Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: baseURL,
		ParserModel:   "gpt-4o-mini",
		EngineTimeout: timeout,
	}
}

func TestClassifierComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "yes\npositive"}},
			},
			"usage": map[string]int{"prompt_tokens": 40, "completion_tokens": 5},
		})
	}))
	defer server.Close()

	classifier := services.NewOpenAIClassifier(classifierTestConfig(server.URL, 5*time.Second), services.NewCostService())

	text, cost, err := classifier.Complete(context.Background(), "You are a precise text analyst.", "Is the brand recommended?", 50)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "yes\npositive" {
		t.Errorf("text = %q", text)
	}
	if cost <= 0 {
		t.Errorf("cost = %v, want positive", cost)
	}
}

func TestClassifierCompleteBoundedByTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stall until the client gives up.
		select {
		case <-r.Context().Done():
		case <-time.After(30 * time.Second):
		}
	}))
	defer server.Close()

	classifier := services.NewOpenAIClassifier(classifierTestConfig(server.URL, 50*time.Millisecond), services.NewCostService())

	start := time.Now()
	_, _, err := classifier.Complete(context.Background(), "system", "user", 50)
	if err == nil {
		t.Fatal("expected a timeout error from a stalled upstream")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("call was not bounded, took %v", elapsed)
	}
}
