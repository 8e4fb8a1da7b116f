// services/gemini_engine.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

// geminiEngine calls the Google Generative Language REST API directly.
type geminiEngine struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewGeminiEngine(cfg *config.Config, costService CostService) EngineAdapter {
	return &geminiEngine{
		apiKey:      cfg.GoogleAIAPIKey,
		model:       cfg.GeminiEngine.Model,
		baseURL:     cfg.GeminiEngine.BaseURL,
		costService: costService,
		httpClient: &http.Client{
			Timeout: cfg.EngineTimeout,
		},
	}
}

func (e *geminiEngine) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

func (e *geminiEngine) Run(ctx context.Context, queryText string) (*models.EngineResponse, error) {
	payload := geminiGenerateRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: engineSystemInstruction}},
		},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: queryText}},
		}},
	}
	payload.GenerationConfig.Temperature = 0.7
	payload.GenerationConfig.MaxOutputTokens = 4096

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", e.baseURL, e.model, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var generateResponse geminiGenerateResponse
	if err := json.Unmarshal(respBody, &generateResponse); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(generateResponse.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range generateResponse.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	modelVersion := generateResponse.ModelVersion
	if modelVersion == "" {
		modelVersion = e.model
	}

	inputTokens := generateResponse.UsageMetadata.PromptTokenCount
	outputTokens := generateResponse.UsageMetadata.CandidatesTokenCount

	return &models.EngineResponse{
		RawText:      text.String(),
		ModelVersion: modelVersion,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         e.costService.CalculateCost(e.model, inputTokens, outputTokens),
	}, nil
}
