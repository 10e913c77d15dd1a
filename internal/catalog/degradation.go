package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
	"github.com/couchcryptid/pv-climate-etl/internal/pvmodel"
)

// DegradationBuilder produces the Van't Hoff catalog for one set of chamber
// parameters.
type DegradationBuilder struct {
	loader   SeriesLoader
	params   domain.DegradationParams
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics
	observer Observer
}

// NewDegradationBuilder validates params and returns a builder. Invalid
// parameters are rejected here, before any site is read.
func NewDegradationBuilder(loader SeriesLoader, params domain.DegradationParams, workers int, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) (*DegradationBuilder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := applyOptions(opts)
	return &DegradationBuilder{
		loader:   loader,
		params:   params,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
		observer: s.observer,
	}, nil
}

// Params returns the validated parameters.
func (b *DegradationBuilder) Params() domain.DegradationParams {
	return b.params
}

// Build lists every site and summarizes its Van't Hoff degradation.
func (b *DegradationBuilder) Build(ctx context.Context) (*DegradationResult, error) {
	sites, err := b.loader.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return b.BuildSites(ctx, sites)
}

// BuildSites summarizes the given sites. Rows keep the order of sites.
func (b *DegradationBuilder) BuildSites(ctx context.Context, sites []domain.SiteLocation) (*DegradationResult, error) {
	start := time.Now()
	res := &DegradationResult{RunID: newRunID(), BuiltAt: domain.Now(), Params: b.params}
	b.logger.Info("degradation build started",
		"run_id", res.RunID,
		"sites", len(sites),
		"temperature_column", b.params.TemperatureColumn(),
	)

	rows, failures, err := runSites(ctx, sites, b.workers, b.observer, b.metrics, b.summarize)
	if err != nil {
		return nil, fmt.Errorf("degradation build: %w", err)
	}
	res.Rows = rows
	res.Failures = failures

	b.metrics.CatalogBuildDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("degradation build finished",
		"run_id", res.RunID,
		"valid", res.Succeeded(),
		"failed", len(res.Failures),
		"duration", time.Since(start),
	)

	if res.Succeeded() == 0 {
		return res, noneSucceeded(res.Failures)
	}
	return res, nil
}

func (b *DegradationBuilder) summarize(ctx context.Context, site domain.SiteLocation) (domain.DegradationSummary, bool, error) {
	series, err := b.loader.Load(ctx, site)
	if err != nil {
		return domain.DegradationSummary{}, false, err
	}
	if len(series.Samples) == 0 {
		return domain.DegradationSummary{}, false, &domain.EmptySeriesError{SiteID: site.ID}
	}
	tempCol := b.params.TemperatureColumn()
	if err := series.RequireColumns(domain.ColPOAGlobal, tempCol); err != nil {
		return domain.DegradationSummary{}, false, err
	}

	poa := make([]float64, len(series.Samples))
	temp := make([]float64, len(series.Samples))
	for i := range series.Samples {
		smp := &series.Samples[i]
		poa[i] = smp.POAGlobal
		if b.params.Temperature == domain.TemperatureCell {
			temp[i] = smp.CellTemp[b.params.Fixture]
		} else {
			temp[i] = smp.ModuleTemp[b.params.Fixture]
		}
	}

	p := b.params
	vh, err := pvmodel.VantHoffDegradationSummary(p.FitExponent, p.ChamberIrradiance, poa, temp, p.TempMultiplier, p.ReferenceTempC)
	row := domain.DegradationSummary{
		Site:               series.Site,
		AvgRateEnv:         vh.AvgRateEnv,
		SumRateEnv:         vh.SumRateEnv,
		RateChamber:        vh.RateChamber,
		AccelerationFactor: vh.AccelerationFactor,
		Valid:              err == nil,
	}
	var dz *domain.DivisionByZeroError
	if errors.As(err, &dz) {
		row.Reason = err.Error()
		return row, true, err
	}
	if err != nil {
		return domain.DegradationSummary{}, false, err
	}
	return row, true, nil
}
