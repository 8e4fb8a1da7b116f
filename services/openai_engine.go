// services/openai_engine.go
package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

// engineSystemInstruction is shared by every engine so responses stay
// comparable across providers.
const engineSystemInstruction = "You are a helpful assistant. Answer the user's question thoroughly and naturally."

type openAIEngine struct {
	client      *openai.Client
	model       string
	costService CostService
}

func NewOpenAIEngine(cfg *config.Config, costService CostService) EngineAdapter {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &openAIEngine{
		client:      &client,
		model:       cfg.OpenAIEngine.Model,
		costService: costService,
	}
}

func (e *openAIEngine) Name() string {
	return "openai"
}

func (e *openAIEngine) Run(ctx context.Context, queryText string) (*models.EngineResponse, error) {
	chatResponse, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(engineSystemInstruction),
			openai.UserMessage(queryText),
		},
		Model:       openai.ChatModel(e.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(4096),
	})
	if err != nil {
		return nil, fmt.Errorf("openai call failed: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	inputTokens := int(chatResponse.Usage.PromptTokens)
	outputTokens := int(chatResponse.Usage.CompletionTokens)

	return &models.EngineResponse{
		RawText:      chatResponse.Choices[0].Message.Content,
		ModelVersion: chatResponse.Model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         e.costService.CalculateCost(e.model, inputTokens, outputTokens),
	}, nil
}
