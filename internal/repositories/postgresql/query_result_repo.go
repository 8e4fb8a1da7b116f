// internal/repositories/postgresql/query_result_repo.go
package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
)

type queryResultRepo struct {
	db *sqlx.DB
}

// NewQueryResultRepo creates a new PostgreSQL-backed query result repository
func NewQueryResultRepo(db *sqlx.DB) repositories.QueryResultRepository {
	return &queryResultRepo{db: db}
}

func (r *queryResultRepo) ExistsForDate(ctx context.Context, queryID uuid.UUID, engine string, runDate time.Time) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM query_results
			WHERE query_id = $1 AND engine = $2 AND run_date = $3
		)`
	if err := r.db.GetContext(ctx, &exists, query, queryID, engine, runDate); err != nil {
		return false, fmt.Errorf("failed to check existing result for query %s engine %s: %w", queryID, engine, err)
	}
	return exists, nil
}

func (r *queryResultRepo) Create(ctx context.Context, result *models.QueryResult) error {
	if result.QueryResultID == uuid.Nil {
		result.QueryResultID = uuid.New()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO query_results (
			query_result_id, query_id, engine, model_version, raw_response,
			brand_mentioned, mention_position, is_top_recommendation, sentiment,
			competitor_mentions, citations, run_date, total_cost, created_at
		) VALUES (
			:query_result_id, :query_id, :engine, :model_version, :raw_response,
			:brand_mentioned, :mention_position, :is_top_recommendation, :sentiment,
			:competitor_mentions, :citations, :run_date, :total_cost, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("failed to create query result for query %s engine %s: %w", result.QueryID, result.Engine, err)
	}
	return nil
}

func (r *queryResultRepo) GetByBrandAndDate(ctx context.Context, brandID uuid.UUID, runDate time.Time) ([]*models.QueryResult, error) {
	var results []*models.QueryResult
	query := `
		SELECT qr.query_result_id, qr.query_id, qr.engine, qr.model_version, qr.raw_response,
		       qr.brand_mentioned, qr.mention_position, qr.is_top_recommendation, qr.sentiment,
		       qr.competitor_mentions, qr.citations, qr.run_date, qr.total_cost, qr.created_at
		FROM query_results qr
		JOIN monitored_queries mq ON mq.query_id = qr.query_id
		WHERE mq.brand_id = $1 AND qr.run_date = $2
		ORDER BY qr.created_at`
	if err := r.db.SelectContext(ctx, &results, query, brandID, runDate); err != nil {
		return nil, fmt.Errorf("failed to get results for brand %s: %w", brandID, err)
	}
	return results, nil
}
