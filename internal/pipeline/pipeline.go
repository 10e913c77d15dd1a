package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/pv-climate-etl/internal/catalog"
	"github.com/couchcryptid/pv-climate-etl/internal/config"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/geo"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// SummaryBuilder builds the AnnualSiteSummary catalog.
type SummaryBuilder interface {
	Build(ctx context.Context) (*catalog.Result, error)
}

// DegradationBuilder builds the Van't Hoff catalog.
type DegradationBuilder interface {
	Build(ctx context.Context) (*catalog.DegradationResult, error)
}

// CatalogStore persists and reloads catalogs.
type CatalogStore interface {
	SaveSummaries(path string, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) error
	LoadSummaries(path string) (domain.CatalogMeta, []domain.AnnualSiteSummary, error)
	SaveDegradation(path string, meta domain.CatalogMeta, rows []domain.DegradationSummary) error
}

// SummaryPublisher writes catalog rows to a downstream sink.
type SummaryPublisher interface {
	LoadBatch(ctx context.Context, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) error
}

// Stages are the collaborators of a Pipeline. Degradation and Publisher are
// optional; a nil stage is skipped.
type Stages struct {
	Summaries   SummaryBuilder
	Degradation DegradationBuilder
	Store       CatalogStore
	Publisher   SummaryPublisher
}

// Options selects how the catalog is obtained and where it is kept.
type Options struct {
	Mode            string
	CatalogPath     string
	DegradationPath string
	RankCacheSize   int
}

// OptionsFromConfig maps service configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:            cfg.CatalogMode,
		CatalogPath:     cfg.CatalogPath,
		DegradationPath: cfg.DegradationPath,
		RankCacheSize:   cfg.RankCacheSize,
	}
}

// Pipeline obtains the site catalog once, persists and publishes it, and
// then serves nearest-site queries against it.
type Pipeline struct {
	stages  Stages
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	ranker  atomic.Pointer[geo.CachedRanker]
}

// New creates a Pipeline with the given stages and observability.
func New(stages Stages, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		stages:  stages,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Ready reports whether a catalog has been installed.
func (p *Pipeline) Ready() bool {
	return p.ranker.Load() != nil
}

// CheckReadiness returns nil once a catalog is installed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.Ready() {
		return fmt.Errorf("%w: catalog has not been built or loaded yet", domain.ErrCatalogNotReady)
	}
	return nil
}

// Nearest ranks the installed catalog from (lat, lon).
func (p *Pipeline) Nearest(lat, lon float64, limit int) (geo.Ranking, error) {
	r := p.ranker.Load()
	if r == nil {
		return geo.Ranking{}, domain.ErrCatalogNotReady
	}
	return r.Nearest(lat, lon, limit)
}

// Run obtains the catalog, persists it, installs it for queries, and
// publishes it. Publication retries with exponential backoff until it
// succeeds or ctx is cancelled. Cancellation is not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "mode", p.opts.Mode)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	meta, rows, err := p.obtainCatalog(ctx)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		return err
	}

	p.install(rows)

	if p.opts.Mode == config.CatalogModeBuild && p.stages.Degradation != nil {
		if err := p.buildDegradation(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}
	}

	if p.stages.Publisher != nil {
		p.publish(ctx, meta, rows)
	}

	p.logger.Info("pipeline finished", "run_id", meta.RunID, "sites", len(rows))
	return nil
}

// obtainCatalog builds the summary catalog and saves it, or loads a saved one.
func (p *Pipeline) obtainCatalog(ctx context.Context) (domain.CatalogMeta, []domain.AnnualSiteSummary, error) {
	if p.opts.Mode == config.CatalogModeLoad {
		meta, rows, err := p.stages.Store.LoadSummaries(p.opts.CatalogPath)
		if err != nil {
			return domain.CatalogMeta{}, nil, err
		}
		if len(rows) == 0 {
			return domain.CatalogMeta{}, nil, fmt.Errorf("catalog %s: %w", p.opts.CatalogPath, domain.ErrNoSitesSucceeded)
		}
		return meta, rows, nil
	}

	res, err := p.stages.Summaries.Build(ctx)
	if res != nil {
		p.reportFailures("summary", res.Failures)
	}
	if err != nil {
		return domain.CatalogMeta{}, nil, err
	}
	if err := p.stages.Store.SaveSummaries(p.opts.CatalogPath, res.Meta(), res.Summaries); err != nil {
		return domain.CatalogMeta{}, nil, err
	}
	return res.Meta(), res.Summaries, nil
}

func (p *Pipeline) buildDegradation(ctx context.Context) error {
	res, err := p.stages.Degradation.Build(ctx)
	if res != nil {
		p.reportFailures("degradation", res.Failures)
	}
	if err != nil {
		return fmt.Errorf("degradation catalog: %w", err)
	}
	return p.stages.Store.SaveDegradation(p.opts.DegradationPath, res.Meta(), res.Rows)
}

func (p *Pipeline) install(rows []domain.AnnualSiteSummary) {
	p.ranker.Store(geo.NewCachedRanker(rows, p.opts.RankCacheSize, p.metrics))
	p.metrics.CatalogSites.Set(float64(len(rows)))
	p.logger.Info("catalog installed", "sites", len(rows))
}

func (p *Pipeline) reportFailures(catalogName string, failures []domain.SiteFailure) {
	for _, f := range failures {
		p.logger.Warn("site excluded from catalog",
			"catalog", catalogName,
			"site_id", f.SiteID,
			"kind", f.Kind,
			"error", f.Message,
		)
	}
}

// publish writes the catalog to the publisher, retrying until success or
// cancellation.
func (p *Pipeline) publish(ctx context.Context, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) {
	backoff := initialBackoff
	for {
		err := p.stages.Publisher.LoadBatch(ctx, meta, rows)
		if err == nil {
			p.metrics.SummariesPublished.Add(float64(len(rows)))
			p.logger.Info("catalog published", "run_id", meta.RunID, "rows", len(rows))
			return
		}
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("publish catalog failed", "error", err, "backoff", backoff)
		if !p.backoffOrStop(ctx, &backoff) {
			return
		}
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}
