package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pv-climate-etl/internal/catalog"
	"github.com/couchcryptid/pv-climate-etl/internal/config"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
	"github.com/couchcryptid/pv-climate-etl/internal/pipeline"
)

// --- mocks ---

type mockSummaries struct {
	res   *catalog.Result
	err   error
	calls int
}

func (m *mockSummaries) Build(ctx context.Context) (*catalog.Result, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.res, m.err
}

type mockDegradation struct {
	res   *catalog.DegradationResult
	err   error
	calls int
}

func (m *mockDegradation) Build(context.Context) (*catalog.DegradationResult, error) {
	m.calls++
	return m.res, m.err
}

type mockStore struct {
	savedPath        string
	savedMeta        domain.CatalogMeta
	savedRows        []domain.AnnualSiteSummary
	savedDegradation []domain.DegradationSummary
	degradationPath  string

	loadMeta domain.CatalogMeta
	loadRows []domain.AnnualSiteSummary
	loadErr  error
	saveErr  error
}

func (m *mockStore) SaveSummaries(path string, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedPath, m.savedMeta, m.savedRows = path, meta, rows
	return nil
}

func (m *mockStore) LoadSummaries(string) (domain.CatalogMeta, []domain.AnnualSiteSummary, error) {
	return m.loadMeta, m.loadRows, m.loadErr
}

func (m *mockStore) SaveDegradation(path string, _ domain.CatalogMeta, rows []domain.DegradationSummary) error {
	m.degradationPath, m.savedDegradation = path, rows
	return nil
}

type mockPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	meta     domain.CatalogMeta
	rows     int
}

func (m *mockPublisher) LoadBatch(_ context.Context, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures < 0 || m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.meta, m.rows = meta, len(rows)
	return nil
}

func (m *mockPublisher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRows() []domain.AnnualSiteSummary {
	return []domain.AnnualSiteSummary{
		{Site: domain.SiteLocation{ID: "miami", Latitude: 25.79, Longitude: -80.32}},
		{Site: domain.SiteLocation{ID: "seattle", Latitude: 47.45, Longitude: -122.31}},
	}
}

var testMeta = domain.CatalogMeta{RunID: "run-7", BuiltAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

func buildOptions() pipeline.Options {
	return pipeline.Options{
		Mode:            config.CatalogModeBuild,
		CatalogPath:     "catalog/summary.parquet",
		DegradationPath: "catalog/vant_hoff.parquet",
		RankCacheSize:   8,
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

// --- tests ---

func TestPipeline_NotReadyBeforeRun(t *testing.T) {
	p := pipeline.New(pipeline.Stages{}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	assert.False(t, p.Ready())
	assert.ErrorIs(t, p.CheckReadiness(context.Background()), domain.ErrCatalogNotReady)

	_, err := p.Nearest(0, 0, 1)
	assert.ErrorIs(t, err, domain.ErrCatalogNotReady)
}

func TestPipeline_Run_BuildPersistPublish(t *testing.T) {
	summaries := &mockSummaries{res: &catalog.Result{RunID: testMeta.RunID, BuiltAt: testMeta.BuiltAt, Summaries: testRows()}}
	degradation := &mockDegradation{res: &catalog.DegradationResult{
		RunID: "deg-1",
		Rows:  []domain.DegradationSummary{{Site: domain.SiteLocation{ID: "miami"}, Valid: true}},
	}}
	store := &mockStore{}
	pub := &mockPublisher{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(pipeline.Stages{
		Summaries:   summaries,
		Degradation: degradation,
		Store:       store,
		Publisher:   pub,
	}, buildOptions(), testLogger(), metrics)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, "catalog/summary.parquet", store.savedPath)
	assert.Equal(t, testMeta, store.savedMeta)
	assert.Len(t, store.savedRows, 2)
	assert.Equal(t, "catalog/vant_hoff.parquet", store.degradationPath)
	assert.Len(t, store.savedDegradation, 1)

	assert.Equal(t, testMeta, pub.meta)
	assert.Equal(t, 2, pub.rows)

	require.True(t, p.Ready())
	require.NoError(t, p.CheckReadiness(context.Background()))
	ranking, err := p.Nearest(26, -80, 1)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 1)
	assert.Equal(t, "miami", ranking.Entries[0].Summary.Site.ID)

	assert.InDelta(t, 2, gaugeValue(t, metrics.CatalogSites), 0)
	assert.InDelta(t, 2, counterValue(t, metrics.SummariesPublished), 0)
	assert.InDelta(t, 0, gaugeValue(t, metrics.PipelineRunning), 0)
}

func TestPipeline_Run_BuildFails(t *testing.T) {
	failure := domain.NewSiteFailure("only", &domain.EmptySeriesError{SiteID: "only"})
	summaries := &mockSummaries{
		res: &catalog.Result{Failures: []domain.SiteFailure{failure}},
		err: domain.ErrNoSitesSucceeded,
	}
	store := &mockStore{}
	p := pipeline.New(pipeline.Stages{Summaries: summaries, Store: store}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrNoSitesSucceeded)
	assert.False(t, p.Ready())
	assert.Empty(t, store.savedPath)
}

func TestPipeline_Run_SaveFails(t *testing.T) {
	summaries := &mockSummaries{res: &catalog.Result{Summaries: testRows()}}
	store := &mockStore{saveErr: errors.New("disk full")}
	p := pipeline.New(pipeline.Stages{Summaries: summaries, Store: store}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, p.Ready())
}

func TestPipeline_Run_LoadMode(t *testing.T) {
	summaries := &mockSummaries{}
	degradation := &mockDegradation{}
	store := &mockStore{loadMeta: testMeta, loadRows: testRows()}
	opts := buildOptions()
	opts.Mode = config.CatalogModeLoad

	p := pipeline.New(pipeline.Stages{Summaries: summaries, Degradation: degradation, Store: store}, opts, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, p.Run(context.Background()))

	assert.Zero(t, summaries.calls)
	assert.Zero(t, degradation.calls)
	assert.Empty(t, store.savedPath)
	assert.True(t, p.Ready())
}

func TestPipeline_Run_LoadModeEmptyCatalog(t *testing.T) {
	opts := buildOptions()
	opts.Mode = config.CatalogModeLoad
	p := pipeline.New(pipeline.Stages{Store: &mockStore{}}, opts, testLogger(), observability.NewMetricsForTesting())

	assert.ErrorIs(t, p.Run(context.Background()), domain.ErrNoSitesSucceeded)
	assert.False(t, p.Ready())
}

func TestPipeline_Run_DegradationFailureKeepsSummaryCatalog(t *testing.T) {
	summaries := &mockSummaries{res: &catalog.Result{Summaries: testRows()}}
	degradation := &mockDegradation{
		res: &catalog.DegradationResult{},
		err: domain.ErrNoSitesSucceeded,
	}
	store := &mockStore{}
	p := pipeline.New(pipeline.Stages{Summaries: summaries, Degradation: degradation, Store: store}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrNoSitesSucceeded)
	assert.True(t, p.Ready(), "summary catalog stays installed")
	assert.Nil(t, store.savedDegradation)
}

func TestPipeline_Run_PublishRetriesWithBackoff(t *testing.T) {
	summaries := &mockSummaries{res: &catalog.Result{Summaries: testRows()}}
	pub := &mockPublisher{failures: 1}
	p := pipeline.New(pipeline.Stages{Summaries: summaries, Store: &mockStore{}, Publisher: pub}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	start := time.Now()
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 2, pub.callCount())
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestPipeline_Run_PublishStopsOnCancel(t *testing.T) {
	summaries := &mockSummaries{res: &catalog.Result{Summaries: testRows()}}
	pub := &mockPublisher{failures: -1}
	p := pipeline.New(pipeline.Stages{Summaries: summaries, Store: &mockStore{}, Publisher: pub}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, pub.callCount(), 1)
	assert.True(t, p.Ready(), "catalog is served while publication is retried")
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	summaries := &mockSummaries{res: &catalog.Result{Summaries: testRows()}}
	p := pipeline.New(pipeline.Stages{Summaries: summaries, Store: &mockStore{}}, buildOptions(), testLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.False(t, p.Ready())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		CatalogMode:     config.CatalogModeLoad,
		CatalogPath:     "/data/summary.parquet",
		DegradationPath: "/data/vh.parquet",
		RankCacheSize:   64,
	}
	assert.Equal(t, pipeline.Options{
		Mode:            config.CatalogModeLoad,
		CatalogPath:     "/data/summary.parquet",
		DegradationPath: "/data/vh.parquet",
		RankCacheSize:   64,
	}, pipeline.OptionsFromConfig(cfg))
}

func TestPipeline_NearestRejectsInvalidQuery(t *testing.T) {
	store := &mockStore{loadRows: testRows()}
	opts := buildOptions()
	opts.Mode = config.CatalogModeLoad
	p := pipeline.New(pipeline.Stages{Store: store}, opts, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, p.Run(context.Background()))

	_, err := p.Nearest(math.NaN(), 0, 1)
	var ip *domain.InvalidParameterError
	assert.ErrorAs(t, err, &ip)

	_, err = p.Nearest(0, 200, 1)
	assert.ErrorAs(t, err, &ip)
}
