// internal/repositories/postgresql/monitored_query_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
)

type monitoredQueryRepo struct {
	db *sqlx.DB
}

// NewMonitoredQueryRepo creates a new PostgreSQL-backed monitored query repository
func NewMonitoredQueryRepo(db *sqlx.DB) repositories.MonitoredQueryRepository {
	return &monitoredQueryRepo{db: db}
}

func (r *monitoredQueryRepo) GetActiveByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	var queries []*models.MonitoredQuery
	query := `
		SELECT query_id, brand_id, query_text, category, is_active, created_at
		FROM monitored_queries
		WHERE brand_id = $1 AND is_active = true
		ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &queries, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get active queries for brand %s: %w", brandID, err)
	}
	return queries, nil
}
