// internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

// BrandWithOwner pairs a brand with its owner's plan tier so callers can
// gate engines and run frequency without a second lookup.
type BrandWithOwner struct {
	models.Brand
	OwnerEmail string          `db:"owner_email"`
	PlanTier   models.PlanTier `db:"plan_tier"`
}

// BrandRepository handles brand data access
type BrandRepository interface {
	GetByID(ctx context.Context, brandID uuid.UUID) (*models.Brand, error)
	GetWithOwner(ctx context.Context, brandID uuid.UUID) (*BrandWithOwner, error)
	ListWithOwners(ctx context.Context) ([]*BrandWithOwner, error)
}

// MonitoredQueryRepository handles monitored query data access
type MonitoredQueryRepository interface {
	GetActiveByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error)
}

// CompetitorRepository handles competitor data access
type CompetitorRepository interface {
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error)
}

// QueryResultRepository handles query result data access
type QueryResultRepository interface {
	// ExistsForDate reports whether a result already exists for the
	// (query, engine, run date) combination.
	ExistsForDate(ctx context.Context, queryID uuid.UUID, engine string, runDate time.Time) (bool, error)
	Create(ctx context.Context, result *models.QueryResult) error
	GetByBrandAndDate(ctx context.Context, brandID uuid.UUID, runDate time.Time) ([]*models.QueryResult, error)
}
