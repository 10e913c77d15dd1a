// Package aggregate reduces one site's hourly series to its annual catalog row.
package aggregate

import (
	"time"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/pvmodel"
)

const (
	// DefaultExtremeFraction selects the hottest 2% of hours.
	DefaultExtremeFraction = 0.02

	uvFraction = 0.05
)

// Options tunes the per-site reduction.
type Options struct {
	ReversalTempC   float64
	ExtremeFraction float64
}

// DefaultOptions returns the operational settings for the catalog.
func DefaultOptions() Options {
	return Options{
		ReversalTempC:   pvmodel.DefaultReversalTempC,
		ExtremeFraction: DefaultExtremeFraction,
	}
}

// Aggregator reduces one site's hourly series to an AnnualSiteSummary.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	opts Options
}

// New creates an Aggregator. Zero-valued options fall back to the defaults.
func New(opts Options) *Aggregator {
	def := DefaultOptions()
	if opts.ReversalTempC == 0 {
		opts.ReversalTempC = def.ReversalTempC
	}
	if opts.ExtremeFraction <= 0 {
		opts.ExtremeFraction = def.ExtremeFraction
	}
	return &Aggregator{opts: opts}
}

// Options returns the settings in effect.
func (a *Aggregator) Options() Options {
	return a.opts
}

// RequiredColumns lists every input column Aggregate reads.
func RequiredColumns() []domain.Column {
	cols := []domain.Column{
		domain.ColLocalTime,
		domain.ColDryBulb,
		domain.ColDewPoint,
		domain.ColRelativeHumidity,
		domain.ColWindSpeed,
		domain.ColSkyCoverOkta,
		domain.ColGHI,
		domain.ColDNI,
		domain.ColDHI,
		domain.ColPOADirect,
		domain.ColPOADiffuse,
		domain.ColPOAGroundDiffuse,
		domain.ColPOASkyDiffuse,
		domain.ColPOAGlobal,
	}
	for _, f := range domain.Fixtures() {
		cols = append(cols, domain.CellTempColumn(f), domain.ModuleTempColumn(f))
	}
	return cols
}

// Aggregate reduces series to one catalog row. NaN samples are skipped by
// every sum, mean, and extreme. A series with no samples fails with
// EmptySeriesError before columns are checked; a series lacking a required
// column fails with MissingColumnError.
func (a *Aggregator) Aggregate(series domain.SiteSeries) (domain.AnnualSiteSummary, error) {
	n := len(series.Samples)
	if n == 0 {
		return domain.AnnualSiteSummary{}, &domain.EmptySeriesError{SiteID: series.Site.ID}
	}
	if err := series.RequireColumns(RequiredColumns()...); err != nil {
		return domain.AnnualSiteSummary{}, err
	}

	c := extractColumns(series)
	out := domain.AnnualSiteSummary{
		Site:        series.Site,
		SampleCount: n,
	}

	for _, f := range domain.Fixtures() {
		out.Fixtures[f] = a.fixtureSummary(f, c.local, c.cell[f], c.module[f])
	}

	out.GHISum = pvmodel.WhToGJ(pvmodel.Sum(c.ghi))
	out.DNISum = pvmodel.WhToGJ(pvmodel.Sum(c.dni))
	out.DHISum = pvmodel.WhToGJ(pvmodel.Sum(c.dhi))
	out.POADirectSum = pvmodel.WhToGJ(pvmodel.Sum(c.poaDirect))
	out.POADiffuseSum = pvmodel.WhToGJ(pvmodel.Sum(c.poaDiffuse))
	out.POAGroundDiffuseSum = pvmodel.WhToGJ(pvmodel.Sum(c.poaGround))
	out.POASkyDiffuseSum = pvmodel.WhToGJ(pvmodel.Sum(c.poaSky))
	out.POAGlobalSum = pvmodel.WhToGJ(pvmodel.Sum(c.poaGlobal))
	out.GlobalUVDose = pvmodel.GJToMJ(out.GHISum * uvFraction)
	out.UVDoseLatitudeTilt = pvmodel.GJToMJ(out.POAGlobalSum) * uvFraction

	out.Ambient = temperatureStats(c.dryBulb)

	vapor := make([]float64, n)
	dew := make([]float64, n)
	power := make([]float64, n)
	elevationKm := series.Site.ElevationKm()
	primary := c.cell[domain.OpenRackGlass]
	for i := range n {
		vapor[i] = pvmodel.WaterVaporPressure(c.dewPoint[i])
		dew[i] = pvmodel.ClampDewYield(pvmodel.DewYield(elevationKm, c.dewPoint[i], c.dryBulb[i], c.windSpeed[i], c.okta[i]))
		power[i] = pvmodel.RelativePower(primary[i], c.poaGlobal[i])
	}
	out.WaterVaporPressureAvg = pvmodel.Mean(vapor)
	out.WaterVaporPressureSum = pvmodel.Sum(vapor)
	out.DewYieldSum = pvmodel.Sum(dew)
	out.HoursRHAbove85 = pvmodel.HoursRHAbove85(c.rh)
	out.RelativePowerSum = pvmodel.Sum(power)
	out.RelativePowerAvg = pvmodel.Mean(power)

	return out, nil
}

func (a *Aggregator) fixtureSummary(f domain.FixtureType, local []time.Time, cell, module []float64) domain.FixtureSummary {
	return domain.FixtureSummary{
		Fixture:       f,
		Cell98thAvg:   topFractionMean(cell, a.opts.ExtremeFraction),
		Module98thAvg: topFractionMean(module, a.opts.ExtremeFraction),
		Module:        temperatureStats(module),
		SolderFatigue: pvmodel.SolderFatigueDamage(local, cell, a.opts.ReversalTempC),
	}
}

func temperatureStats(xs []float64) domain.TemperatureStats {
	lo, hi := pvmodel.Min(xs), pvmodel.Max(xs)
	return domain.TemperatureStats{
		Min:   lo,
		Avg:   pvmodel.Mean(xs),
		Max:   hi,
		Range: hi - lo,
	}
}

// columns is the column-major view of a site's samples.
type columns struct {
	local []time.Time

	dryBulb, dewPoint, rh, windSpeed, okta []float64

	ghi, dni, dhi []float64

	poaDirect, poaDiffuse, poaGround, poaSky, poaGlobal []float64

	cell, module [domain.FixtureCount][]float64
}

func extractColumns(series domain.SiteSeries) columns {
	n := len(series.Samples)
	col := func() []float64 { return make([]float64, n) }
	c := columns{
		local:      make([]time.Time, n),
		dryBulb:    col(),
		dewPoint:   col(),
		rh:         col(),
		windSpeed:  col(),
		okta:       col(),
		ghi:        col(),
		dni:        col(),
		dhi:        col(),
		poaDirect:  col(),
		poaDiffuse: col(),
		poaGround:  col(),
		poaSky:     col(),
		poaGlobal:  col(),
	}
	for f := range domain.FixtureCount {
		c.cell[f] = col()
		c.module[f] = col()
	}

	for i, s := range series.Samples {
		c.local[i] = s.LocalTime
		c.dryBulb[i] = s.DryBulbC
		c.dewPoint[i] = s.DewPointC
		c.rh[i] = s.RelativeHumidity
		c.windSpeed[i] = s.WindSpeed
		c.okta[i] = s.SkyCoverOkta
		c.ghi[i] = s.GHI
		c.dni[i] = s.DNI
		c.dhi[i] = s.DHI
		c.poaDirect[i] = s.POADirect
		c.poaDiffuse[i] = s.POADiffuse
		c.poaGround[i] = s.POAGroundDiffuse
		c.poaSky[i] = s.POASkyDiffuse
		c.poaGlobal[i] = s.POAGlobal
		for f := range domain.FixtureCount {
			c.cell[f][i] = s.CellTemp[f]
			c.module[f][i] = s.ModuleTemp[f]
		}
	}
	return c
}
