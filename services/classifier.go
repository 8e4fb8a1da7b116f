// services/classifier.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
)

type openAIClassifier struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	costService CostService
}

// NewOpenAIClassifier creates the classification capability backed by a
// small OpenAI model. Decoding is deterministic; callers set the output
// budget per call.
func NewOpenAIClassifier(cfg *config.Config, costService CostService) Classifier {
	fmt.Printf("[NewOpenAIClassifier] Creating classifier with model %s (key length: %d)\n", cfg.ParserModel, len(cfg.OpenAIAPIKey))

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := openai.NewClient(opts...)

	return &openAIClassifier{
		client:      &client,
		model:       cfg.ParserModel,
		timeout:     cfg.EngineTimeout,
		costService: costService,
	}
}

func (c *openAIClassifier) Complete(ctx context.Context, systemInstruction, userPrompt string, maxOutputTokens int) (string, float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chatResponse, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(userPrompt),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(int64(maxOutputTokens)),
	})
	if err != nil {
		return "", 0, fmt.Errorf("classification call failed: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return "", 0, fmt.Errorf("classification call returned no choices")
	}

	inputTokens := int(chatResponse.Usage.PromptTokens)
	outputTokens := int(chatResponse.Usage.CompletionTokens)
	cost := c.costService.CalculateCost(c.model, inputTokens, outputTokens)

	return chatResponse.Choices[0].Message.Content, cost, nil
}
