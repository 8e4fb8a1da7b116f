// internal/repositories/postgresql/competitor_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
)

type competitorRepo struct {
	db *sqlx.DB
}

// NewCompetitorRepo creates a new PostgreSQL-backed competitor repository
func NewCompetitorRepo(db *sqlx.DB) repositories.CompetitorRepository {
	return &competitorRepo{db: db}
}

func (r *competitorRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error) {
	var competitors []*models.Competitor
	query := `
		SELECT competitor_id, brand_id, name, aliases, created_at
		FROM competitors
		WHERE brand_id = $1
		ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &competitors, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get competitors for brand %s: %w", brandID, err)
	}
	return competitors, nil
}
