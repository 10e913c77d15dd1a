package domain

import (
	"math"
	"time"
)

// TemperatureStats is the min/mean/max/range of one temperature series.
type TemperatureStats struct {
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
}

// FixtureSummary holds the per-fixture annual aggregates.
type FixtureSummary struct {
	Fixture FixtureType `json:"fixture"`

	// Cell98thAvg and Module98thAvg average the hottest ceil(2%) of hours,
	// ranked independently for cell and module temperature.
	Cell98thAvg   float64 `json:"cell_98th_avg"`
	Module98thAvg float64 `json:"module_98th_avg"`

	Module        TemperatureStats `json:"module"`
	SolderFatigue float64          `json:"solder_fatigue"`
}

// AnnualSiteSummary is one catalog row: a site reduced to annual statistics.
// Irradiance sums are GJ/m^2; UV doses are MJ/y.
type AnnualSiteSummary struct {
	Site SiteLocation `json:"site"`

	GHISum              float64 `json:"ghi_sum"`
	DNISum              float64 `json:"dni_sum"`
	DHISum              float64 `json:"dhi_sum"`
	POADirectSum        float64 `json:"poa_direct_sum"`
	POADiffuseSum       float64 `json:"poa_diffuse_sum"`
	POAGroundDiffuseSum float64 `json:"poa_ground_diffuse_sum"`
	POASkyDiffuseSum    float64 `json:"poa_sky_diffuse_sum"`
	POAGlobalSum        float64 `json:"poa_global_sum"`
	GlobalUVDose        float64 `json:"global_uv_dose"`
	UVDoseLatitudeTilt  float64 `json:"uv_dose_latitude_tilt"`

	Ambient TemperatureStats `json:"ambient"`

	WaterVaporPressureAvg float64 `json:"water_vapor_pressure_avg"`
	WaterVaporPressureSum float64 `json:"water_vapor_pressure_sum"`
	HoursRHAbove85        int     `json:"hours_rh_above_85"`
	DewYieldSum           float64 `json:"dew_yield_sum"`

	RelativePowerSum float64 `json:"relative_power_sum"`
	RelativePowerAvg float64 `json:"relative_power_avg"`

	Fixtures [FixtureCount]FixtureSummary `json:"fixtures"`

	SampleCount int `json:"sample_count"`
}

// Fixture returns the aggregates for f.
func (s *AnnualSiteSummary) Fixture(f FixtureType) FixtureSummary {
	return s.Fixtures[f]
}

// DegradationSummary is one row of the Van't Hoff catalog. Valid is false
// when the acceleration factor could not be computed; Reason carries why.
type DegradationSummary struct {
	Site SiteLocation `json:"site"`

	AvgRateEnv         float64 `json:"avg_rate_env"`
	SumRateEnv         float64 `json:"sum_rate_env"`
	RateChamber        float64 `json:"rate_chamber"`
	AccelerationFactor float64 `json:"acceleration_factor"`

	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// DistanceRankedEntry is a catalog row annotated with its distance to a query point.
type DistanceRankedEntry struct {
	DistanceKm float64           `json:"distance_km"`
	Summary    AnnualSiteSummary `json:"summary"`
}

// CatalogMeta identifies one catalog build.
type CatalogMeta struct {
	RunID   string    `json:"run_id"`
	BuiltAt time.Time `json:"built_at"`
}

// SummaryColumns is the presentation column order of the summary catalog.
func SummaryColumns() []string {
	cols := []string{
		"site_id", "station_name", "country", "state", "data_source",
		"latitude", "longitude", "elevation_m", "utc_offset", "climate",
		"ghi_sum", "dni_sum", "dhi_sum",
		"poa_direct_sum", "poa_diffuse_sum", "poa_ground_diffuse_sum", "poa_sky_diffuse_sum", "poa_global_sum",
		"global_uv_dose", "uv_dose_latitude_tilt",
		"ambient_min", "ambient_avg", "ambient_max", "ambient_range",
		"water_vapor_pressure_avg", "water_vapor_pressure_sum", "hours_rh_above_85", "dew_yield_sum",
		"relative_power_sum", "relative_power_avg",
	}
	for _, f := range Fixtures() {
		n := f.String()
		cols = append(cols,
			"cell_98th_avg_"+n,
			"module_98th_avg_"+n,
			"module_min_"+n,
			"module_avg_"+n,
			"module_max_"+n,
			"module_range_"+n,
			"solder_fatigue_"+n,
		)
	}
	return append(cols, "sample_count")
}

// Values returns the row's cells in SummaryColumns order. NaN and infinite
// floats become nil so the row encodes as JSON.
func (s *AnnualSiteSummary) Values() []any {
	site := s.Site
	vals := []any{
		site.ID, site.StationName, site.Country, site.State, string(site.DataSource),
		cell(site.Latitude), cell(site.Longitude), cell(site.ElevationM), cell(site.UTCOffset), site.Climate,
		cell(s.GHISum), cell(s.DNISum), cell(s.DHISum),
		cell(s.POADirectSum), cell(s.POADiffuseSum), cell(s.POAGroundDiffuseSum), cell(s.POASkyDiffuseSum), cell(s.POAGlobalSum),
		cell(s.GlobalUVDose), cell(s.UVDoseLatitudeTilt),
		cell(s.Ambient.Min), cell(s.Ambient.Avg), cell(s.Ambient.Max), cell(s.Ambient.Range),
		cell(s.WaterVaporPressureAvg), cell(s.WaterVaporPressureSum), s.HoursRHAbove85, cell(s.DewYieldSum),
		cell(s.RelativePowerSum), cell(s.RelativePowerAvg),
	}
	for _, fx := range s.Fixtures {
		vals = append(vals,
			cell(fx.Cell98thAvg),
			cell(fx.Module98thAvg),
			cell(fx.Module.Min),
			cell(fx.Module.Avg),
			cell(fx.Module.Max),
			cell(fx.Module.Range),
			cell(fx.SolderFatigue),
		)
	}
	return append(vals, s.SampleCount)
}

// Record keys Values by SummaryColumns.
func (s *AnnualSiteSummary) Record() map[string]any {
	return zip(SummaryColumns(), s.Values())
}

// DegradationColumns is the presentation column order of the Van't Hoff catalog.
func DegradationColumns() []string {
	return []string{
		"site_id", "station_name", "country", "state", "data_source",
		"latitude", "longitude", "elevation_m", "utc_offset", "climate",
		"avg_rate_env", "sum_rate_env", "rate_chamber", "acceleration_factor",
		"valid", "reason",
	}
}

// Values returns the row's cells in DegradationColumns order.
func (d *DegradationSummary) Values() []any {
	site := d.Site
	return []any{
		site.ID, site.StationName, site.Country, site.State, string(site.DataSource),
		cell(site.Latitude), cell(site.Longitude), cell(site.ElevationM), cell(site.UTCOffset), site.Climate,
		cell(d.AvgRateEnv), cell(d.SumRateEnv), cell(d.RateChamber), cell(d.AccelerationFactor),
		d.Valid, d.Reason,
	}
}

// Record keys Values by DegradationColumns.
func (d *DegradationSummary) Record() map[string]any {
	return zip(DegradationColumns(), d.Values())
}

func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func zip(cols []string, vals []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		m[c] = vals[i]
	}
	return m
}
