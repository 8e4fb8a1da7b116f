// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/plans"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
	"github.com/BrandSignal-AI/brandsignal-workflows/services"
)

type ScheduledProcessor struct {
	repos  *services.RepositoryManager
	cfg    *config.Config
	client inngestgo.Client
}

func NewScheduledProcessor(repos *services.RepositoryManager, cfg *config.Config) *ScheduledProcessor {
	return &ScheduledProcessor{
		repos: repos,
		cfg:   cfg,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// DailyBrandProcessor fans out one brand.run event per eligible brand every
// day. Weekly (free tier) brands only run on Mondays.
func (p *ScheduledProcessor) DailyBrandProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-brand-processor",
			Name: "Daily Brand Monitoring Run",
		},
		inngestgo.CronTrigger(p.cfg.RunSchedule), // "0 3 * * *" by default, every day at 3 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			now := time.Now().UTC()

			// Step 1: Load every brand with its owner's plan tier
			brands, err := step.Run(ctx, "list-brands-with-owners", func(ctx context.Context) ([]*repositories.BrandWithOwner, error) {
				return p.repos.BrandRepo.ListWithOwners(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to list brands: %w", err)
			}

			if len(brands) == 0 {
				return map[string]interface{}{
					"execution_date": now.Format("2006-01-02"),
					"total_brands":   0,
					"message":        "No brands to process",
				}, nil
			}

			// Step 2: Trigger one idempotent event send per eligible brand.
			// If the workflow fails, only sends that didn't complete retry.
			triggered := 0
			for _, brand := range brands {
				limits := plans.Limits(brand.PlanTier)
				if limits.Frequency == plans.FrequencyWeekly && now.Weekday() != time.Monday {
					fmt.Printf("[DailyBrandProcessor] Skipping brand %q (user=%s, plan=%s): weekly plan, today is not Monday\n",
						brand.Name, brand.OwnerEmail, brand.PlanTier)
					continue
				}

				stepName := fmt.Sprintf("trigger-brand-run-%s", brand.BrandID.String())
				engines := plans.AllowedEngines(brand.PlanTier)

				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "brand.run",
						Data: map[string]interface{}{
							"brand_id":     brand.BrandID.String(),
							"engines":      engines,
							"triggered_by": "automatic_scheduler",
						},
					}
					return p.client.Send(ctx, evt)
				})
				if err != nil {
					// Keep going so one bad send doesn't block other brands
					fmt.Printf("Warning: Failed to send event for brand %s: %v\n", brand.BrandID.String(), err)
					continue
				}
				triggered++
			}

			return map[string]interface{}{
				"execution_date":   now.Format("2006-01-02"),
				"weekday":          now.Weekday().String(),
				"total_brands":     len(brands),
				"brands_triggered": triggered,
				"message":          fmt.Sprintf("Triggered %d brand runs for %s", triggered, now.Weekday().String()),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create daily brand processor function: %v\n", err)
	}

	return fn
}
