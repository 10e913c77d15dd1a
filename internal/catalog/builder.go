// Package catalog builds the per-site summary and Van't Hoff catalogs from a
// set of site series, aggregating sites in parallel and tolerating per-site
// failure.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/pv-climate-etl/internal/aggregate"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
)

// SeriesLoader lists sites and loads one site's hourly series.
type SeriesLoader interface {
	List(ctx context.Context) ([]domain.SiteLocation, error)
	Load(ctx context.Context, site domain.SiteLocation) (domain.SiteSeries, error)
}

// Option configures a builder.
type Option func(*settings)

type settings struct {
	observer Observer
}

// WithObserver installs a progress observer.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{observer: NoopObserver{}}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Builder produces the AnnualSiteSummary catalog.
type Builder struct {
	loader   SeriesLoader
	agg      *aggregate.Aggregator
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics
	observer Observer
}

// NewBuilder creates a Builder that aggregates up to workers sites at once.
func NewBuilder(loader SeriesLoader, agg *aggregate.Aggregator, workers int, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Builder {
	s := applyOptions(opts)
	return &Builder{
		loader:   loader,
		agg:      agg,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
		observer: s.observer,
	}
}

// Build lists every site and aggregates it. The result holds the rows that
// succeeded plus one failure per site that did not; the error is non-nil only
// when listing fails, ctx is cancelled, or no site succeeds.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	sites, err := b.loader.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return b.BuildSites(ctx, sites)
}

// BuildSites aggregates the given sites. Rows keep the order of sites.
func (b *Builder) BuildSites(ctx context.Context, sites []domain.SiteLocation) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: newRunID(), BuiltAt: domain.Now()}
	b.logger.Info("catalog build started", "run_id", res.RunID, "sites", len(sites), "workers", b.workers)

	rows, failures, err := runSites(ctx, sites, b.workers, b.observer, b.metrics,
		func(ctx context.Context, site domain.SiteLocation) (domain.AnnualSiteSummary, bool, error) {
			series, err := b.loader.Load(ctx, site)
			if err != nil {
				return domain.AnnualSiteSummary{}, false, err
			}
			summary, err := b.agg.Aggregate(series)
			if err != nil {
				return domain.AnnualSiteSummary{}, false, err
			}
			return summary, true, nil
		})
	if err != nil {
		return nil, fmt.Errorf("catalog build: %w", err)
	}
	res.Summaries = rows
	res.Failures = failures

	b.metrics.CatalogBuildDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("catalog build finished",
		"run_id", res.RunID,
		"succeeded", res.Succeeded(),
		"failed", len(res.Failures),
		"duration", time.Since(start),
	)

	if res.Succeeded() == 0 {
		return res, noneSucceeded(res.Failures)
	}
	return res, nil
}
