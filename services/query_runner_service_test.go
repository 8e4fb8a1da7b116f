package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/repositories"
	"github.com/BrandSignal-AI/brandsignal-workflows/services"
)

type fakeBrandRepo struct {
	brand *models.Brand
}

func (f *fakeBrandRepo) GetByID(ctx context.Context, brandID uuid.UUID) (*models.Brand, error) {
	return f.brand, nil
}

func (f *fakeBrandRepo) GetWithOwner(ctx context.Context, brandID uuid.UUID) (*repositories.BrandWithOwner, error) {
	return &repositories.BrandWithOwner{Brand: *f.brand, PlanTier: models.PlanFree}, nil
}

func (f *fakeBrandRepo) ListWithOwners(ctx context.Context) ([]*repositories.BrandWithOwner, error) {
	return []*repositories.BrandWithOwner{{Brand: *f.brand, PlanTier: models.PlanFree}}, nil
}

type fakeQueryRepo struct {
	queries []*models.MonitoredQuery
	err     error
}

func (f *fakeQueryRepo) GetActiveByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	return f.queries, f.err
}

type fakeCompetitorRepo struct {
	competitors []*models.Competitor
}

func (f *fakeCompetitorRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error) {
	return f.competitors, nil
}

type fakeResultRepo struct {
	existsFunc func(queryID uuid.UUID, engine string) (bool, error)
	createErr  error
	created    []*models.QueryResult
}

func (f *fakeResultRepo) ExistsForDate(ctx context.Context, queryID uuid.UUID, engine string, runDate time.Time) (bool, error) {
	if f.existsFunc != nil {
		return f.existsFunc(queryID, engine)
	}
	return false, nil
}

func (f *fakeResultRepo) Create(ctx context.Context, result *models.QueryResult) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, result)
	return nil
}

func (f *fakeResultRepo) GetByBrandAndDate(ctx context.Context, brandID uuid.UUID, runDate time.Time) ([]*models.QueryResult, error) {
	return nil, nil
}

type fakeEngine struct {
	name     string
	response *models.EngineResponse
	err      error
	calls    int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Run(ctx context.Context, queryText string) (*models.EngineResponse, error) {
	f.calls++
	return f.response, f.err
}

type fakeAnalyzer struct {
	result *models.ParsedResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, rawText string, brand services.Identity, competitors []services.Identity, citations []string) (*models.ParsedResult, error) {
	return f.result, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		EngineTimeout: time.Second,
		RunDelay:      0,
	}
}

func testBrand() *models.Brand {
	return &models.Brand{
		BrandID: uuid.New(),
		Name:    "TestBrand",
	}
}

func testQuery(brandID uuid.UUID) *models.MonitoredQuery {
	return &models.MonitoredQuery{
		QueryID:   uuid.New(),
		BrandID:   brandID,
		QueryText: "What is the best automated testing tool?",
		IsActive:  true,
	}
}

func newRunner(repos *services.RepositoryManager, engine *fakeEngine, analyzer *fakeAnalyzer) services.QueryRunnerService {
	return services.NewQueryRunnerService(testConfig(), repos, services.NewEngineRegistryWith(engine), analyzer)
}

func defaultParsed() *models.ParsedResult {
	return &models.ParsedResult{
		BrandMentioned:  true,
		MentionPosition: models.PositionFirst,
		Sentiment:       models.SentimentPositive,
		AnalysisCost:    0.25,
	}
}

func TestRunBrandSuccess(t *testing.T) {
	brand := testBrand()
	query := testQuery(brand.BrandID)
	resultRepo := &fakeResultRepo{}
	repos := &services.RepositoryManager{
		BrandRepo:       &fakeBrandRepo{brand: brand},
		QueryRepo:       &fakeQueryRepo{queries: []*models.MonitoredQuery{query}},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: resultRepo,
	}
	engine := &fakeEngine{
		name: "openai",
		response: &models.EngineResponse{
			RawText:      "TestBrand is great.",
			ModelVersion: "gpt-4o-2024-08-06",
			Cost:         0.5,
		},
	}

	stats, err := newRunner(repos, engine, &fakeAnalyzer{result: defaultParsed()}).
		RunBrand(context.Background(), brand.BrandID, []string{"openai"})
	if err != nil {
		t.Fatalf("RunBrand: %v", err)
	}

	want := models.RunStats{Total: 1, Success: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
	if len(resultRepo.created) != 1 {
		t.Fatalf("expected one persisted result, got %d", len(resultRepo.created))
	}

	created := resultRepo.created[0]
	if created.QueryID != query.QueryID || created.Engine != "openai" {
		t.Errorf("unexpected result keys: %+v", created)
	}
	if created.ModelVersion != "gpt-4o-2024-08-06" {
		t.Errorf("model version = %q", created.ModelVersion)
	}
	if created.TotalCost != 0.75 {
		t.Errorf("total cost = %v, want engine + analysis cost", created.TotalCost)
	}
	if created.RunDate.IsZero() {
		t.Error("run date should be set")
	}
	if hour, min, sec := created.RunDate.Clock(); hour != 0 || min != 0 || sec != 0 {
		t.Errorf("run date should be a calendar day, got %v", created.RunDate)
	}
}

func TestRunBrandSkipsExistingResult(t *testing.T) {
	brand := testBrand()
	resultRepo := &fakeResultRepo{
		existsFunc: func(queryID uuid.UUID, engine string) (bool, error) { return true, nil },
	}
	repos := &services.RepositoryManager{
		BrandRepo:       &fakeBrandRepo{brand: brand},
		QueryRepo:       &fakeQueryRepo{queries: []*models.MonitoredQuery{testQuery(brand.BrandID)}},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: resultRepo,
	}
	engine := &fakeEngine{name: "openai"}

	stats, err := newRunner(repos, engine, &fakeAnalyzer{result: defaultParsed()}).
		RunBrand(context.Background(), brand.BrandID, []string{"openai"})
	if err != nil {
		t.Fatalf("RunBrand: %v", err)
	}

	want := models.RunStats{Total: 1, Skipped: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
	if engine.calls != 0 {
		t.Error("engine must not be invoked for a skipped pair")
	}
}

func TestRunBrandNoActiveQueries(t *testing.T) {
	brand := testBrand()
	engine := &fakeEngine{name: "openai"}
	repos := &services.RepositoryManager{
		BrandRepo:       &fakeBrandRepo{brand: brand},
		QueryRepo:       &fakeQueryRepo{},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: &fakeResultRepo{},
	}

	stats, err := newRunner(repos, engine, &fakeAnalyzer{result: defaultParsed()}).
		RunBrand(context.Background(), brand.BrandID, []string{"openai"})
	if err != nil {
		t.Fatalf("RunBrand: %v", err)
	}
	if *stats != (models.RunStats{}) {
		t.Errorf("stats = %+v, want zeroes", *stats)
	}
	if engine.calls != 0 {
		t.Error("no engine calls expected")
	}
}

func TestRunBrandQueryLoadErrorPropagates(t *testing.T) {
	brand := testBrand()
	repos := &services.RepositoryManager{
		BrandRepo:       &fakeBrandRepo{brand: brand},
		QueryRepo:       &fakeQueryRepo{err: errors.New("connection refused")},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: &fakeResultRepo{},
	}

	_, err := newRunner(repos, &fakeEngine{name: "openai"}, &fakeAnalyzer{result: defaultParsed()}).
		RunBrand(context.Background(), brand.BrandID, []string{"openai"})
	if err == nil {
		t.Fatal("setup failure should propagate")
	}
}

func TestRunBrandFailureIsolation(t *testing.T) {
	engineErr := errors.New("engine exploded")
	analyzerErr := errors.New("classifier down")
	persistErr := errors.New("duplicate key")

	tests := []struct {
		name     string
		engines  []string
		engine   *fakeEngine
		analyzer *fakeAnalyzer
		repoErr  error
	}{
		{
			name:     "unknown engine",
			engines:  []string{"copilot"},
			engine:   &fakeEngine{name: "openai"},
			analyzer: &fakeAnalyzer{result: defaultParsed()},
		},
		{
			name:     "engine failure",
			engines:  []string{"openai"},
			engine:   &fakeEngine{name: "openai", err: engineErr},
			analyzer: &fakeAnalyzer{result: defaultParsed()},
		},
		{
			name:     "analyzer failure",
			engines:  []string{"openai"},
			engine:   &fakeEngine{name: "openai", response: &models.EngineResponse{RawText: "text"}},
			analyzer: &fakeAnalyzer{err: analyzerErr},
		},
		{
			name:     "persistence failure",
			engines:  []string{"openai"},
			engine:   &fakeEngine{name: "openai", response: &models.EngineResponse{RawText: "text"}},
			analyzer: &fakeAnalyzer{result: defaultParsed()},
			repoErr:  persistErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand := testBrand()
			repos := &services.RepositoryManager{
				BrandRepo:       &fakeBrandRepo{brand: brand},
				QueryRepo:       &fakeQueryRepo{queries: []*models.MonitoredQuery{testQuery(brand.BrandID)}},
				CompetitorRepo:  &fakeCompetitorRepo{},
				QueryResultRepo: &fakeResultRepo{createErr: tt.repoErr},
			}

			stats, err := newRunner(repos, tt.engine, tt.analyzer).
				RunBrand(context.Background(), brand.BrandID, tt.engines)
			if err != nil {
				t.Fatalf("per-pair failures must not propagate, got %v", err)
			}

			want := models.RunStats{Total: 1, Failed: 1}
			if *stats != want {
				t.Errorf("stats = %+v, want %+v", *stats, want)
			}
		})
	}
}

func TestRunBrandOneEngineFailingDoesNotAffectOthers(t *testing.T) {
	brand := testBrand()
	query := testQuery(brand.BrandID)
	resultRepo := &fakeResultRepo{}
	repos := &services.RepositoryManager{
		BrandRepo:       &fakeBrandRepo{brand: brand},
		QueryRepo:       &fakeQueryRepo{queries: []*models.MonitoredQuery{query}},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: resultRepo,
	}
	healthy := &fakeEngine{name: "openai", response: &models.EngineResponse{RawText: "TestBrand wins."}}
	broken := &fakeEngine{name: "anthropic", err: errors.New("upstream 529")}
	runner := services.NewQueryRunnerService(testConfig(), repos,
		services.NewEngineRegistryWith(healthy, broken),
		&fakeAnalyzer{result: defaultParsed()})

	stats, err := runner.RunBrand(context.Background(), brand.BrandID, []string{"openai", "anthropic"})
	if err != nil {
		t.Fatalf("RunBrand: %v", err)
	}

	want := models.RunStats{Total: 2, Success: 1, Failed: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
	if len(resultRepo.created) != 1 {
		t.Fatalf("expected the healthy engine's result to be persisted, got %d", len(resultRepo.created))
	}
	if resultRepo.created[0].Engine != "openai" {
		t.Errorf("persisted engine = %q, want %q", resultRepo.created[0].Engine, "openai")
	}
	if healthy.calls != 1 || broken.calls != 1 {
		t.Errorf("engine calls = %d/%d, want 1/1", healthy.calls, broken.calls)
	}
}

func TestRunBrandIdempotencyCheckErrorCountsAsFailed(t *testing.T) {
	brand := testBrand()
	resultRepo := &fakeResultRepo{
		existsFunc: func(queryID uuid.UUID, engine string) (bool, error) {
			return false, errors.New("connection reset")
		},
	}
	repos := &services.RepositoryManager{
		BrandRepo:       &fakeBrandRepo{brand: brand},
		QueryRepo:       &fakeQueryRepo{queries: []*models.MonitoredQuery{testQuery(brand.BrandID)}},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: resultRepo,
	}
	engine := &fakeEngine{name: "openai"}

	stats, err := newRunner(repos, engine, &fakeAnalyzer{result: defaultParsed()}).
		RunBrand(context.Background(), brand.BrandID, []string{"openai"})
	if err != nil {
		t.Fatalf("RunBrand: %v", err)
	}
	want := models.RunStats{Total: 1, Failed: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
	if engine.calls != 0 {
		t.Error("engine must not run when the idempotency check fails")
	}
}

func TestRunBrandMultipleEnginesPerQuery(t *testing.T) {
	brand := testBrand()
	resultRepo := &fakeResultRepo{}
	repos := &services.RepositoryManager{
		BrandRepo: &fakeBrandRepo{brand: brand},
		QueryRepo: &fakeQueryRepo{queries: []*models.MonitoredQuery{
			testQuery(brand.BrandID),
			testQuery(brand.BrandID),
		}},
		CompetitorRepo:  &fakeCompetitorRepo{},
		QueryResultRepo: resultRepo,
	}
	openai := &fakeEngine{name: "openai", response: &models.EngineResponse{RawText: "a"}}
	anthropic := &fakeEngine{name: "anthropic", response: &models.EngineResponse{RawText: "b"}}
	runner := services.NewQueryRunnerService(testConfig(), repos,
		services.NewEngineRegistryWith(openai, anthropic),
		&fakeAnalyzer{result: defaultParsed()})

	stats, err := runner.RunBrand(context.Background(), brand.BrandID, []string{"openai", "anthropic"})
	if err != nil {
		t.Fatalf("RunBrand: %v", err)
	}

	want := models.RunStats{Total: 4, Success: 4}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
	if openai.calls != 2 || anthropic.calls != 2 {
		t.Errorf("engine calls = %d/%d, want 2/2", openai.calls, anthropic.calls)
	}
}
