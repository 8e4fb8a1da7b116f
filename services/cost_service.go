// services/cost_service.go
package services

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-4o":                            {input: 2.50, output: 10.00},
	"gpt-4o-mini":                       {input: 0.15, output: 0.60},
	"claude-sonnet-4-20250514":          {input: 3.00, output: 15.00},
	"llama-3.1-sonar-large-128k-online": {input: 1.00, output: 1.00},
	"gemini-2.0-flash":                  {input: 0.10, output: 0.40},
}

func (s *costService) CalculateCost(model string, inputTokens, outputTokens int) float64 {
	modelCosts, exists := costPerToken[model]
	if !exists {
		// Default to GPT-4o costs if model not found
		modelCosts = costPerToken["gpt-4o"]
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output
	return inputCost + outputCost
}
