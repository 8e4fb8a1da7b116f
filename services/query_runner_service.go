// services/query_runner_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

type queryRunnerService struct {
	cfg      *config.Config
	repos    *RepositoryManager
	engines  EngineResolver
	analyzer ResponseAnalyzerService
}

func NewQueryRunnerService(cfg *config.Config, repos *RepositoryManager, engines EngineResolver, analyzer ResponseAnalyzerService) QueryRunnerService {
	return &queryRunnerService{
		cfg:      cfg,
		repos:    repos,
		engines:  engines,
		analyzer: analyzer,
	}
}

// RunBrand runs every active query for a brand across the given engines
// and persists one result per (query, engine, day). Per-pair failures are
// contained; only setup failures propagate.
func (s *queryRunnerService) RunBrand(ctx context.Context, brandID uuid.UUID, allowedEngines []string) (*models.RunStats, error) {
	stats := &models.RunStats{}

	brand, err := s.repos.BrandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load brand: %w", err)
	}

	queries, err := s.repos.QueryRepo.GetActiveByBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	if len(queries) == 0 {
		fmt.Printf("[RunBrand] Brand %q has no active queries. Skipping.\n", brand.Name)
		return stats, nil
	}

	competitorRows, err := s.repos.CompetitorRepo.GetByBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}

	brandIdentity := Identity{Name: brand.Name, Aliases: brand.Aliases}
	competitors := make([]Identity, len(competitorRows))
	for i, comp := range competitorRows {
		competitors[i] = Identity{Name: comp.Name, Aliases: comp.Aliases}
	}

	today := runDate(time.Now())

	fmt.Printf("[RunBrand] Processing %d queries across %d engines for brand %q\n",
		len(queries), len(allowedEngines), brand.Name)

	for _, query := range queries {
		for _, engineID := range allowedEngines {
			stats.Total++

			exists, err := s.repos.QueryResultRepo.ExistsForDate(ctx, query.QueryID, engineID, today)
			if err != nil {
				fmt.Printf("[RunBrand] Failed idempotency check for query=%s engine=%s: %v\n",
					query.QueryID, engineID, err)
				stats.Failed++
				continue
			}
			if exists {
				fmt.Printf("[RunBrand] Result already exists for query=%s engine=%s date=%s. Skipping.\n",
					query.QueryID, engineID, today.Format("2006-01-02"))
				stats.Skipped++
				continue
			}

			if s.runSingleQuery(ctx, query, brandIdentity, competitors, engineID, today) {
				stats.Success++
			} else {
				stats.Failed++
			}

			// Rate-limit between API calls
			time.Sleep(s.cfg.RunDelay)
		}
	}

	fmt.Printf("[RunBrand] Brand %q run complete. Stats: total=%d success=%d failed=%d skipped=%d\n",
		brand.Name, stats.Total, stats.Success, stats.Failed, stats.Skipped)
	return stats, nil
}

// runSingleQuery runs one query against one engine, analyzes the response
// and stores the result. Returns false on any failure; never propagates.
func (s *queryRunnerService) runSingleQuery(ctx context.Context, query *models.MonitoredQuery, brand Identity, competitors []Identity, engineID string, today time.Time) bool {
	adapter, ok := s.engines.Resolve(engineID)
	if !ok {
		fmt.Printf("[RunSingleQuery] Unknown engine %q. Skipping.\n", engineID)
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.EngineTimeout)
	defer cancel()

	fmt.Printf("[RunSingleQuery] Running query %q (id=%s) on engine %q\n",
		truncate(query.QueryText, 60), query.QueryID, engineID)

	engineResponse, err := adapter.Run(callCtx, query.QueryText)
	if err != nil {
		fmt.Printf("[RunSingleQuery] Engine %q failed for query id=%s: %v\n", engineID, query.QueryID, err)
		return false
	}

	parsed, err := s.analyzer.Analyze(ctx, engineResponse.RawText, brand, competitors, engineResponse.Citations)
	if err != nil {
		fmt.Printf("[RunSingleQuery] Analyzer failed for query id=%s engine=%s: %v\n", query.QueryID, engineID, err)
		return false
	}

	result := &models.QueryResult{
		QueryResultID:       uuid.New(),
		QueryID:             query.QueryID,
		Engine:              engineID,
		ModelVersion:        engineResponse.ModelVersion,
		RawResponse:         engineResponse.RawText,
		BrandMentioned:      parsed.BrandMentioned,
		MentionPosition:     parsed.MentionPosition,
		IsTopRecommendation: parsed.IsTopRecommendation,
		Sentiment:           parsed.Sentiment,
		CompetitorMentions:  parsed.CompetitorMentions,
		Citations:           parsed.Citations,
		RunDate:             today,
		TotalCost:           engineResponse.Cost + parsed.AnalysisCost,
	}

	if err := s.repos.QueryResultRepo.Create(ctx, result); err != nil {
		fmt.Printf("[RunSingleQuery] Failed to persist result for query id=%s engine=%s: %v\n",
			query.QueryID, engineID, err)
		return false
	}

	fmt.Printf("[RunSingleQuery] Stored result id=%s for query=%s engine=%s (brand_mentioned=%v)\n",
		result.QueryResultID, query.QueryID, engineID, parsed.BrandMentioned)
	return true
}

// runDate truncates a timestamp to its UTC calendar day.
func runDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
