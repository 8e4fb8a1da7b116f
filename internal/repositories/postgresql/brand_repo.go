// internal/repositories/postgresql/brand_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
)

type brandRepo struct {
	db *sqlx.DB
}

// NewBrandRepo creates a new PostgreSQL-backed brand repository
func NewBrandRepo(db *sqlx.DB) repositories.BrandRepository {
	return &brandRepo{db: db}
}

func (r *brandRepo) GetByID(ctx context.Context, brandID uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	query := `
		SELECT brand_id, user_id, name, aliases, created_at
		FROM brands
		WHERE brand_id = $1`
	if err := r.db.GetContext(ctx, &brand, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get brand %s: %w", brandID, err)
	}
	return &brand, nil
}

func (r *brandRepo) GetWithOwner(ctx context.Context, brandID uuid.UUID) (*repositories.BrandWithOwner, error) {
	var brand repositories.BrandWithOwner
	query := `
		SELECT b.brand_id, b.user_id, b.name, b.aliases, b.created_at,
		       u.email AS owner_email, u.plan_tier
		FROM brands b
		JOIN users u ON u.user_id = b.user_id
		WHERE b.brand_id = $1`
	if err := r.db.GetContext(ctx, &brand, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get brand %s with owner: %w", brandID, err)
	}
	return &brand, nil
}

func (r *brandRepo) ListWithOwners(ctx context.Context) ([]*repositories.BrandWithOwner, error) {
	var brands []*repositories.BrandWithOwner
	query := `
		SELECT b.brand_id, b.user_id, b.name, b.aliases, b.created_at,
		       u.email AS owner_email, u.plan_tier
		FROM brands b
		JOIN users u ON u.user_id = b.user_id
		ORDER BY b.created_at`
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("failed to list brands with owners: %w", err)
	}
	return brands, nil
}
