// services/perplexity_engine.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

// perplexityEngine calls the Perplexity chat completions API over plain
// HTTP. It is the only engine that returns citations.
type perplexityEngine struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewPerplexityEngine(cfg *config.Config, costService CostService) EngineAdapter {
	return &perplexityEngine{
		apiKey:      cfg.PerplexityAPIKey,
		model:       cfg.PerplexityEngine.Model,
		baseURL:     cfg.PerplexityEngine.BaseURL,
		costService: costService,
		httpClient: &http.Client{
			Timeout: cfg.EngineTimeout,
		},
	}
}

func (e *perplexityEngine) Name() string {
	return "perplexity"
}

type perplexityChatRequest struct {
	Model       string                  `json:"model"`
	Messages    []perplexityChatMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

type perplexityChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message perplexityChatMessage `json:"message"`
	} `json:"choices"`
	// Perplexity returns citations at the top level of the response object.
	Citations []string `json:"citations"`
	Usage     struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (e *perplexityEngine) Run(ctx context.Context, queryText string) (*models.EngineResponse, error) {
	payload := perplexityChatRequest{
		Model: e.model,
		Messages: []perplexityChatMessage{
			{Role: "system", Content: engineSystemInstruction},
			{Role: "user", Content: queryText},
		},
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal perplexity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create perplexity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexity call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read perplexity response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("perplexity returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResponse perplexityChatResponse
	if err := json.Unmarshal(respBody, &chatResponse); err != nil {
		return nil, fmt.Errorf("failed to decode perplexity response: %w", err)
	}
	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("perplexity returned no choices")
	}

	modelVersion := chatResponse.Model
	if modelVersion == "" {
		modelVersion = e.model
	}

	return &models.EngineResponse{
		RawText:      chatResponse.Choices[0].Message.Content,
		ModelVersion: modelVersion,
		Citations:    chatResponse.Citations,
		InputTokens:  chatResponse.Usage.PromptTokens,
		OutputTokens: chatResponse.Usage.CompletionTokens,
		Cost:         e.costService.CalculateCost(e.model, chatResponse.Usage.PromptTokens, chatResponse.Usage.CompletionTokens),
	}, nil
}
