// workflows/brand_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/plans"
	"github.com/BrandSignal-AI/brandsignal-workflows/services"
)

type BrandProcessor struct {
	repos              *services.RepositoryManager
	queryRunnerService services.QueryRunnerService
	client             inngestgo.Client
}

func NewBrandProcessor(repos *services.RepositoryManager, queryRunnerService services.QueryRunnerService) *BrandProcessor {
	return &BrandProcessor{
		repos:              repos,
		queryRunnerService: queryRunnerService,
	}
}

func (p *BrandProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

type BrandRunEvent struct {
	BrandID     string   `json:"brand_id"`
	Engines     []string `json:"engines,omitempty"`
	TriggeredBy string   `json:"triggered_by"`
}

// ProcessBrand runs one brand's monitored queries across its allowed
// engines in response to a brand.run event.
func (p *BrandProcessor) ProcessBrand() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-brand",
			Name:    "Process Brand - Run Monitored Queries",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.run", nil),
		func(ctx context.Context, input inngestgo.Input[BrandRunEvent]) (any, error) {
			brandID, err := uuid.Parse(input.Event.Data.BrandID)
			if err != nil {
				return nil, fmt.Errorf("invalid brand ID %q: %w", input.Event.Data.BrandID, err)
			}

			fmt.Printf("[ProcessBrand] Starting monitoring run for brand: %s (triggered by %s)\n",
				brandID, input.Event.Data.TriggeredBy)

			// Step 1: Resolve the engines this brand may use
			engines := input.Event.Data.Engines
			if len(engines) == 0 {
				engines, err = step.Run(ctx, "resolve-allowed-engines", func(ctx context.Context) ([]string, error) {
					brand, err := p.repos.BrandRepo.GetWithOwner(ctx, brandID)
					if err != nil {
						return nil, fmt.Errorf("failed to load brand with owner: %w", err)
					}
					return plans.AllowedEngines(brand.PlanTier), nil
				})
				if err != nil {
					return nil, fmt.Errorf("step 1 failed: %w", err)
				}
			}

			// Step 2: Run queries across engines and persist results
			stats, err := step.Run(ctx, "run-brand-queries", func(ctx context.Context) (*models.RunStats, error) {
				return p.queryRunnerService.RunBrand(ctx, brandID, engines)
			})
			if err != nil {
				return nil, fmt.Errorf("step 2 failed: %w", err)
			}

			fmt.Printf("[ProcessBrand] Completed brand %s: total=%d success=%d failed=%d skipped=%d\n",
				brandID, stats.Total, stats.Success, stats.Failed, stats.Skipped)

			// Step 3: Summarize today's stored results for the run report
			summary, err := step.Run(ctx, "summarize-run-results", func(ctx context.Context) (map[string]interface{}, error) {
				now := time.Now().UTC()
				today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

				results, err := p.repos.QueryResultRepo.GetByBrandAndDate(ctx, brandID, today)
				if err != nil {
					return nil, fmt.Errorf("failed to load today's results: %w", err)
				}

				mentioned := 0
				totalCost := 0.0
				for _, result := range results {
					if result.BrandMentioned {
						mentioned++
					}
					totalCost += result.TotalCost
				}
				return map[string]interface{}{
					"results_stored":  len(results),
					"brand_mentioned": mentioned,
					"total_cost":      totalCost,
				}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 3 failed: %w", err)
			}

			return map[string]interface{}{
				"brand_id": brandID.String(),
				"engines":  engines,
				"total":    stats.Total,
				"success":  stats.Success,
				"failed":   stats.Failed,
				"skipped":  stats.Skipped,
				"summary":  summary,
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create process brand function: %v\n", err)
	}

	return fn
}
