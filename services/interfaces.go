// services/interfaces.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories/postgresql"
)

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db              *sqlx.DB
	BrandRepo       repositories.BrandRepository
	QueryRepo       repositories.MonitoredQueryRepository
	CompetitorRepo  repositories.CompetitorRepository
	QueryResultRepo repositories.QueryResultRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *sqlx.DB) *RepositoryManager {
	return &RepositoryManager{
		db:              db,
		BrandRepo:       postgresql.NewBrandRepo(db),
		QueryRepo:       postgresql.NewMonitoredQueryRepo(db),
		CompetitorRepo:  postgresql.NewCompetitorRepo(db),
		QueryResultRepo: postgresql.NewQueryResultRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.BeginTxx(ctx, nil)
}

// Identity is a match target: a canonical name plus alias spellings, all
// equally valid.
type Identity struct {
	Name    string
	Aliases []string
}

// AllNames returns the canonical name followed by the aliases.
func (id Identity) AllNames() []string {
	return append([]string{id.Name}, id.Aliases...)
}

// EngineAdapter is the single-method capability every answer engine
// implements. Run issues one query and returns the raw response.
type EngineAdapter interface {
	Name() string
	Run(ctx context.Context, queryText string) (*models.EngineResponse, error)
}

// EngineResolver maps an engine identifier to its adapter. A miss is a
// plain not-found, not an error type.
type EngineResolver interface {
	Resolve(engineID string) (EngineAdapter, bool)
}

// Classifier is the text-classification capability used by the response
// analyzer. Complete returns the completion text plus the call's cost.
type Classifier interface {
	Complete(ctx context.Context, systemInstruction, userPrompt string, maxOutputTokens int) (string, float64, error)
}

// ResponseAnalyzerService extracts brand mention analytics from one raw
// engine response.
type ResponseAnalyzerService interface {
	Analyze(ctx context.Context, rawText string, brand Identity, competitors []Identity, citations []string) (*models.ParsedResult, error)
}

// QueryRunnerService orchestrates one brand's queries across engines.
type QueryRunnerService interface {
	RunBrand(ctx context.Context, brandID uuid.UUID, allowedEngines []string) (*models.RunStats, error)
}

// CostService calculates API usage costs from token counts.
type CostService interface {
	CalculateCost(model string, inputTokens, outputTokens int) float64
}
