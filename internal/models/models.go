// internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MentionPosition buckets where in a response a mention first occurs.
type MentionPosition string

const (
	PositionFirst        MentionPosition = "first"
	PositionEarly        MentionPosition = "early"
	PositionMiddle       MentionPosition = "middle"
	PositionLate         MentionPosition = "late"
	PositionNotMentioned MentionPosition = "not_mentioned"
)

// Sentiment is the classified tone toward an entity within a response.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentMixed    Sentiment = "mixed"
)

// ValidSentiments enumerates every accepted sentiment token, in the order
// parsers probe for them.
var ValidSentiments = []Sentiment{
	SentimentPositive,
	SentimentNeutral,
	SentimentNegative,
	SentimentMixed,
}

// PlanTier identifies a user's subscription level.
type PlanTier string

const (
	PlanFree   PlanTier = "free"
	PlanPro    PlanTier = "pro"
	PlanAgency PlanTier = "agency"
)

// User owns brands; the plan tier gates engines and run frequency.
type User struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	PlanTier  PlanTier  `db:"plan_tier" json:"plan_tier"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Brand is a monitored identity: canonical name plus alias spellings, all
// equally valid match targets.
type Brand struct {
	BrandID   uuid.UUID      `db:"brand_id" json:"brand_id"`
	UserID    uuid.UUID      `db:"user_id" json:"user_id"`
	Name      string         `db:"name" json:"name"`
	Aliases   pq.StringArray `db:"aliases" json:"aliases"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Competitor is a rival identity tracked alongside a brand.
type Competitor struct {
	CompetitorID uuid.UUID      `db:"competitor_id" json:"competitor_id"`
	BrandID      uuid.UUID      `db:"brand_id" json:"brand_id"`
	Name         string         `db:"name" json:"name"`
	Aliases      pq.StringArray `db:"aliases" json:"aliases"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// MonitoredQuery is a natural-language question issued periodically to the
// answer engines on a brand's behalf.
type MonitoredQuery struct {
	QueryID   uuid.UUID `db:"query_id" json:"query_id"`
	BrandID   uuid.UUID `db:"brand_id" json:"brand_id"`
	QueryText string    `db:"query_text" json:"query_text"`
	Category  *string   `db:"category" json:"category,omitempty"` // comparison, purchase_intent, informational, general
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CompetitorMention is the per-competitor analytics entry stored inside a
// query result.
type CompetitorMention struct {
	Mentioned           bool            `json:"mentioned"`
	Position            MentionPosition `json:"position"`
	Sentiment           Sentiment       `json:"sentiment"`
	IsTopRecommendation bool            `json:"is_top_recommendation"`
}

// CompetitorMentionMap maps competitor name to its analytics entry. Stored
// as a JSONB column.
type CompetitorMentionMap map[string]CompetitorMention

func (m CompetitorMentionMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *CompetitorMentionMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CompetitorMentionMap", src)
	}
	return json.Unmarshal(data, m)
}

// QueryResult is the persisted outcome of one (query, engine, run_date)
// combination. At most one row exists per combination; rows are never
// mutated after creation.
type QueryResult struct {
	QueryResultID       uuid.UUID            `db:"query_result_id" json:"query_result_id"`
	QueryID             uuid.UUID            `db:"query_id" json:"query_id"`
	Engine              string               `db:"engine" json:"engine"`
	ModelVersion        string               `db:"model_version" json:"model_version"`
	RawResponse         string               `db:"raw_response" json:"raw_response"`
	BrandMentioned      bool                 `db:"brand_mentioned" json:"brand_mentioned"`
	MentionPosition     MentionPosition      `db:"mention_position" json:"mention_position"`
	IsTopRecommendation bool                 `db:"is_top_recommendation" json:"is_top_recommendation"`
	Sentiment           Sentiment            `db:"sentiment" json:"sentiment"`
	CompetitorMentions  CompetitorMentionMap `db:"competitor_mentions" json:"competitor_mentions"`
	Citations           pq.StringArray       `db:"citations" json:"citations,omitempty"`
	RunDate             time.Time            `db:"run_date" json:"run_date"`
	TotalCost           float64              `db:"total_cost" json:"total_cost"`
	CreatedAt           time.Time            `db:"created_at" json:"created_at"`
}

// EngineResponse is the transient value an engine adapter returns for one
// query invocation.
type EngineResponse struct {
	RawText      string   `json:"raw_text"`
	ModelVersion string   `json:"model_version"`
	Citations    []string `json:"citations,omitempty"` // only some engines populate these
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	Cost         float64  `json:"cost"`
}

// ParsedResult is the structured analytics extracted from one raw response.
// It is a pure function of (raw text, brand identity, competitor identities,
// citations) plus the classification calls.
type ParsedResult struct {
	BrandMentioned      bool                 `json:"brand_mentioned"`
	MentionPosition     MentionPosition      `json:"mention_position"`
	IsTopRecommendation bool                 `json:"is_top_recommendation"`
	Sentiment           Sentiment            `json:"sentiment"`
	CompetitorMentions  CompetitorMentionMap `json:"competitor_mentions"`
	Citations           []string             `json:"citations,omitempty"`
	AnalysisCost        float64              `json:"analysis_cost"`
}

// RunStats aggregates one orchestrator invocation over a brand.
type RunStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
