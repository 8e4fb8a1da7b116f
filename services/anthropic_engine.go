// services/anthropic_engine.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

type anthropicEngine struct {
	client      *anthropic.Client
	model       string
	costService CostService
}

func NewAnthropicEngine(cfg *config.Config, costService CostService) EngineAdapter {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &anthropicEngine{
		client:      &client,
		model:       cfg.AnthropicEngine.Model,
		costService: costService,
	}
}

func (e *anthropicEngine) Name() string {
	return "anthropic"
}

func (e *anthropicEngine) Run(ctx context.Context, queryText string) (*models.EngineResponse, error) {
	response, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: engineSystemInstruction},
		},
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: queryText},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic call failed: %w", err)
	}

	// Anthropic returns a list of content blocks; concatenate the text ones.
	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	inputTokens := int(response.Usage.InputTokens)
	outputTokens := int(response.Usage.OutputTokens)

	return &models.EngineResponse{
		RawText:      text.String(),
		ModelVersion: string(response.Model),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         e.costService.CalculateCost(e.model, inputTokens, outputTokens),
	}, nil
}
