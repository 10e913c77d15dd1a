package parquet

import (
	"time"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// summaryRow is the on-disk layout of one summary catalog row. Column names
// match domain.SummaryColumns.
type summaryRow struct {
	SiteID      string  `parquet:"name=site_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	StationName string  `parquet:"name=station_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Country     string  `parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8"`
	State       string  `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	DataSource  string  `parquet:"name=data_source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Latitude    float64 `parquet:"name=latitude, type=DOUBLE"`
	Longitude   float64 `parquet:"name=longitude, type=DOUBLE"`
	ElevationM  float64 `parquet:"name=elevation_m, type=DOUBLE"`
	UTCOffset   float64 `parquet:"name=utc_offset, type=DOUBLE"`
	Climate     string  `parquet:"name=climate, type=BYTE_ARRAY, convertedtype=UTF8"`

	GHISum                float64 `parquet:"name=ghi_sum, type=DOUBLE"`
	DNISum                float64 `parquet:"name=dni_sum, type=DOUBLE"`
	DHISum                float64 `parquet:"name=dhi_sum, type=DOUBLE"`
	POADirectSum          float64 `parquet:"name=poa_direct_sum, type=DOUBLE"`
	POADiffuseSum         float64 `parquet:"name=poa_diffuse_sum, type=DOUBLE"`
	POAGroundDiffuseSum   float64 `parquet:"name=poa_ground_diffuse_sum, type=DOUBLE"`
	POASkyDiffuseSum      float64 `parquet:"name=poa_sky_diffuse_sum, type=DOUBLE"`
	POAGlobalSum          float64 `parquet:"name=poa_global_sum, type=DOUBLE"`
	GlobalUVDose          float64 `parquet:"name=global_uv_dose, type=DOUBLE"`
	UVDoseLatitudeTilt    float64 `parquet:"name=uv_dose_latitude_tilt, type=DOUBLE"`
	AmbientMin            float64 `parquet:"name=ambient_min, type=DOUBLE"`
	AmbientAvg            float64 `parquet:"name=ambient_avg, type=DOUBLE"`
	AmbientMax            float64 `parquet:"name=ambient_max, type=DOUBLE"`
	AmbientRange          float64 `parquet:"name=ambient_range, type=DOUBLE"`
	WaterVaporPressureAvg float64 `parquet:"name=water_vapor_pressure_avg, type=DOUBLE"`
	WaterVaporPressureSum float64 `parquet:"name=water_vapor_pressure_sum, type=DOUBLE"`
	HoursRHAbove85        int64   `parquet:"name=hours_rh_above_85, type=INT64"`
	DewYieldSum           float64 `parquet:"name=dew_yield_sum, type=DOUBLE"`
	RelativePowerSum      float64 `parquet:"name=relative_power_sum, type=DOUBLE"`
	RelativePowerAvg      float64 `parquet:"name=relative_power_avg, type=DOUBLE"`

	Cell98thAvgOpenRackGlass   float64 `parquet:"name=cell_98th_avg_open_rack_glass, type=DOUBLE"`
	Module98thAvgOpenRackGlass float64 `parquet:"name=module_98th_avg_open_rack_glass, type=DOUBLE"`
	ModuleMinOpenRackGlass     float64 `parquet:"name=module_min_open_rack_glass, type=DOUBLE"`
	ModuleAvgOpenRackGlass     float64 `parquet:"name=module_avg_open_rack_glass, type=DOUBLE"`
	ModuleMaxOpenRackGlass     float64 `parquet:"name=module_max_open_rack_glass, type=DOUBLE"`
	ModuleRangeOpenRackGlass   float64 `parquet:"name=module_range_open_rack_glass, type=DOUBLE"`
	SolderFatigueOpenRackGlass float64 `parquet:"name=solder_fatigue_open_rack_glass, type=DOUBLE"`

	Cell98thAvgRoofMountGlass   float64 `parquet:"name=cell_98th_avg_roof_mount_glass, type=DOUBLE"`
	Module98thAvgRoofMountGlass float64 `parquet:"name=module_98th_avg_roof_mount_glass, type=DOUBLE"`
	ModuleMinRoofMountGlass     float64 `parquet:"name=module_min_roof_mount_glass, type=DOUBLE"`
	ModuleAvgRoofMountGlass     float64 `parquet:"name=module_avg_roof_mount_glass, type=DOUBLE"`
	ModuleMaxRoofMountGlass     float64 `parquet:"name=module_max_roof_mount_glass, type=DOUBLE"`
	ModuleRangeRoofMountGlass   float64 `parquet:"name=module_range_roof_mount_glass, type=DOUBLE"`
	SolderFatigueRoofMountGlass float64 `parquet:"name=solder_fatigue_roof_mount_glass, type=DOUBLE"`

	Cell98thAvgOpenRackPolymer   float64 `parquet:"name=cell_98th_avg_open_rack_polymer, type=DOUBLE"`
	Module98thAvgOpenRackPolymer float64 `parquet:"name=module_98th_avg_open_rack_polymer, type=DOUBLE"`
	ModuleMinOpenRackPolymer     float64 `parquet:"name=module_min_open_rack_polymer, type=DOUBLE"`
	ModuleAvgOpenRackPolymer     float64 `parquet:"name=module_avg_open_rack_polymer, type=DOUBLE"`
	ModuleMaxOpenRackPolymer     float64 `parquet:"name=module_max_open_rack_polymer, type=DOUBLE"`
	ModuleRangeOpenRackPolymer   float64 `parquet:"name=module_range_open_rack_polymer, type=DOUBLE"`
	SolderFatigueOpenRackPolymer float64 `parquet:"name=solder_fatigue_open_rack_polymer, type=DOUBLE"`

	Cell98thAvgInsulatedBackPolymer   float64 `parquet:"name=cell_98th_avg_insulated_back_polymer, type=DOUBLE"`
	Module98thAvgInsulatedBackPolymer float64 `parquet:"name=module_98th_avg_insulated_back_polymer, type=DOUBLE"`
	ModuleMinInsulatedBackPolymer     float64 `parquet:"name=module_min_insulated_back_polymer, type=DOUBLE"`
	ModuleAvgInsulatedBackPolymer     float64 `parquet:"name=module_avg_insulated_back_polymer, type=DOUBLE"`
	ModuleMaxInsulatedBackPolymer     float64 `parquet:"name=module_max_insulated_back_polymer, type=DOUBLE"`
	ModuleRangeInsulatedBackPolymer   float64 `parquet:"name=module_range_insulated_back_polymer, type=DOUBLE"`
	SolderFatigueInsulatedBackPolymer float64 `parquet:"name=solder_fatigue_insulated_back_polymer, type=DOUBLE"`

	Cell98thAvgOpenRackThinfilmSteel   float64 `parquet:"name=cell_98th_avg_open_rack_thinfilm_steel, type=DOUBLE"`
	Module98thAvgOpenRackThinfilmSteel float64 `parquet:"name=module_98th_avg_open_rack_thinfilm_steel, type=DOUBLE"`
	ModuleMinOpenRackThinfilmSteel     float64 `parquet:"name=module_min_open_rack_thinfilm_steel, type=DOUBLE"`
	ModuleAvgOpenRackThinfilmSteel     float64 `parquet:"name=module_avg_open_rack_thinfilm_steel, type=DOUBLE"`
	ModuleMaxOpenRackThinfilmSteel     float64 `parquet:"name=module_max_open_rack_thinfilm_steel, type=DOUBLE"`
	ModuleRangeOpenRackThinfilmSteel   float64 `parquet:"name=module_range_open_rack_thinfilm_steel, type=DOUBLE"`
	SolderFatigueOpenRackThinfilmSteel float64 `parquet:"name=solder_fatigue_open_rack_thinfilm_steel, type=DOUBLE"`

	Cell98thAvgConcentrator22x   float64 `parquet:"name=cell_98th_avg_concentrator_22x, type=DOUBLE"`
	Module98thAvgConcentrator22x float64 `parquet:"name=module_98th_avg_concentrator_22x, type=DOUBLE"`
	ModuleMinConcentrator22x     float64 `parquet:"name=module_min_concentrator_22x, type=DOUBLE"`
	ModuleAvgConcentrator22x     float64 `parquet:"name=module_avg_concentrator_22x, type=DOUBLE"`
	ModuleMaxConcentrator22x     float64 `parquet:"name=module_max_concentrator_22x, type=DOUBLE"`
	ModuleRangeConcentrator22x   float64 `parquet:"name=module_range_concentrator_22x, type=DOUBLE"`
	SolderFatigueConcentrator22x float64 `parquet:"name=solder_fatigue_concentrator_22x, type=DOUBLE"`

	SampleCount int64  `parquet:"name=sample_count, type=INT64"`
	RunID       string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	BuiltAt     int64  `parquet:"name=built_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

func toSummaryRow(s *domain.AnnualSiteSummary, meta domain.CatalogMeta) summaryRow {
	site := s.Site
	r := summaryRow{
		SiteID:      site.ID,
		StationName: site.StationName,
		Country:     site.Country,
		State:       site.State,
		DataSource:  string(site.DataSource),
		Latitude:    site.Latitude,
		Longitude:   site.Longitude,
		ElevationM:  site.ElevationM,
		UTCOffset:   site.UTCOffset,
		Climate:     site.Climate,

		GHISum:                s.GHISum,
		DNISum:                s.DNISum,
		DHISum:                s.DHISum,
		POADirectSum:          s.POADirectSum,
		POADiffuseSum:         s.POADiffuseSum,
		POAGroundDiffuseSum:   s.POAGroundDiffuseSum,
		POASkyDiffuseSum:      s.POASkyDiffuseSum,
		POAGlobalSum:          s.POAGlobalSum,
		GlobalUVDose:          s.GlobalUVDose,
		UVDoseLatitudeTilt:    s.UVDoseLatitudeTilt,
		AmbientMin:            s.Ambient.Min,
		AmbientAvg:            s.Ambient.Avg,
		AmbientMax:            s.Ambient.Max,
		AmbientRange:          s.Ambient.Range,
		WaterVaporPressureAvg: s.WaterVaporPressureAvg,
		WaterVaporPressureSum: s.WaterVaporPressureSum,
		HoursRHAbove85:        int64(s.HoursRHAbove85),
		DewYieldSum:           s.DewYieldSum,
		RelativePowerSum:      s.RelativePowerSum,
		RelativePowerAvg:      s.RelativePowerAvg,

		SampleCount: int64(s.SampleCount),
		RunID:       meta.RunID,
		BuiltAt:     meta.BuiltAt.UnixMilli(),
	}
	r.setFixtures(s.Fixtures)
	return r
}

func (r *summaryRow) summary() domain.AnnualSiteSummary {
	return domain.AnnualSiteSummary{
		Site: r.site(),

		GHISum:              r.GHISum,
		DNISum:              r.DNISum,
		DHISum:              r.DHISum,
		POADirectSum:        r.POADirectSum,
		POADiffuseSum:       r.POADiffuseSum,
		POAGroundDiffuseSum: r.POAGroundDiffuseSum,
		POASkyDiffuseSum:    r.POASkyDiffuseSum,
		POAGlobalSum:        r.POAGlobalSum,
		GlobalUVDose:        r.GlobalUVDose,
		UVDoseLatitudeTilt:  r.UVDoseLatitudeTilt,

		Ambient: domain.TemperatureStats{
			Min:   r.AmbientMin,
			Avg:   r.AmbientAvg,
			Max:   r.AmbientMax,
			Range: r.AmbientRange,
		},

		WaterVaporPressureAvg: r.WaterVaporPressureAvg,
		WaterVaporPressureSum: r.WaterVaporPressureSum,
		HoursRHAbove85:        int(r.HoursRHAbove85),
		DewYieldSum:           r.DewYieldSum,
		RelativePowerSum:      r.RelativePowerSum,
		RelativePowerAvg:      r.RelativePowerAvg,

		Fixtures:    r.fixtures(),
		SampleCount: int(r.SampleCount),
	}
}

func (r *summaryRow) site() domain.SiteLocation {
	return domain.SiteLocation{
		ID:          r.SiteID,
		StationName: r.StationName,
		Country:     r.Country,
		State:       r.State,
		DataSource:  domain.DataSource(r.DataSource),
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		ElevationM:  r.ElevationM,
		UTCOffset:   r.UTCOffset,
		Climate:     r.Climate,
	}
}

func (r *summaryRow) meta() domain.CatalogMeta {
	return domain.CatalogMeta{RunID: r.RunID, BuiltAt: time.UnixMilli(r.BuiltAt).UTC()}
}

// fixtureFields points at the seven columns of fixture f.
func (r *summaryRow) fixtureFields(f domain.FixtureType) [7]*float64 {
	switch f {
	case domain.OpenRackGlass:
		return [7]*float64{&r.Cell98thAvgOpenRackGlass, &r.Module98thAvgOpenRackGlass, &r.ModuleMinOpenRackGlass, &r.ModuleAvgOpenRackGlass, &r.ModuleMaxOpenRackGlass, &r.ModuleRangeOpenRackGlass, &r.SolderFatigueOpenRackGlass}
	case domain.RoofMountGlass:
		return [7]*float64{&r.Cell98thAvgRoofMountGlass, &r.Module98thAvgRoofMountGlass, &r.ModuleMinRoofMountGlass, &r.ModuleAvgRoofMountGlass, &r.ModuleMaxRoofMountGlass, &r.ModuleRangeRoofMountGlass, &r.SolderFatigueRoofMountGlass}
	case domain.OpenRackPolymer:
		return [7]*float64{&r.Cell98thAvgOpenRackPolymer, &r.Module98thAvgOpenRackPolymer, &r.ModuleMinOpenRackPolymer, &r.ModuleAvgOpenRackPolymer, &r.ModuleMaxOpenRackPolymer, &r.ModuleRangeOpenRackPolymer, &r.SolderFatigueOpenRackPolymer}
	case domain.InsulatedBackPolymer:
		return [7]*float64{&r.Cell98thAvgInsulatedBackPolymer, &r.Module98thAvgInsulatedBackPolymer, &r.ModuleMinInsulatedBackPolymer, &r.ModuleAvgInsulatedBackPolymer, &r.ModuleMaxInsulatedBackPolymer, &r.ModuleRangeInsulatedBackPolymer, &r.SolderFatigueInsulatedBackPolymer}
	case domain.OpenRackThinfilmSteel:
		return [7]*float64{&r.Cell98thAvgOpenRackThinfilmSteel, &r.Module98thAvgOpenRackThinfilmSteel, &r.ModuleMinOpenRackThinfilmSteel, &r.ModuleAvgOpenRackThinfilmSteel, &r.ModuleMaxOpenRackThinfilmSteel, &r.ModuleRangeOpenRackThinfilmSteel, &r.SolderFatigueOpenRackThinfilmSteel}
	case domain.Concentrator22x:
		return [7]*float64{&r.Cell98thAvgConcentrator22x, &r.Module98thAvgConcentrator22x, &r.ModuleMinConcentrator22x, &r.ModuleAvgConcentrator22x, &r.ModuleMaxConcentrator22x, &r.ModuleRangeConcentrator22x, &r.SolderFatigueConcentrator22x}
	default:
		return [7]*float64{new(float64), new(float64), new(float64), new(float64), new(float64), new(float64), new(float64)}
	}
}

func (r *summaryRow) setFixtures(fx [domain.FixtureCount]domain.FixtureSummary) {
	for _, f := range domain.Fixtures() {
		s := fx[f]
		dst := r.fixtureFields(f)
		vals := [7]float64{s.Cell98thAvg, s.Module98thAvg, s.Module.Min, s.Module.Avg, s.Module.Max, s.Module.Range, s.SolderFatigue}
		for i, p := range dst {
			*p = vals[i]
		}
	}
}

func (r *summaryRow) fixtures() [domain.FixtureCount]domain.FixtureSummary {
	var out [domain.FixtureCount]domain.FixtureSummary
	for _, f := range domain.Fixtures() {
		v := r.fixtureFields(f)
		out[f] = domain.FixtureSummary{
			Fixture:       f,
			Cell98thAvg:   *v[0],
			Module98thAvg: *v[1],
			Module: domain.TemperatureStats{
				Min:   *v[2],
				Avg:   *v[3],
				Max:   *v[4],
				Range: *v[5],
			},
			SolderFatigue: *v[6],
		}
	}
	return out
}

// degradationRow is the on-disk layout of one Van't Hoff catalog row.
type degradationRow struct {
	SiteID      string  `parquet:"name=site_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	StationName string  `parquet:"name=station_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Country     string  `parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8"`
	State       string  `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	DataSource  string  `parquet:"name=data_source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Latitude    float64 `parquet:"name=latitude, type=DOUBLE"`
	Longitude   float64 `parquet:"name=longitude, type=DOUBLE"`
	ElevationM  float64 `parquet:"name=elevation_m, type=DOUBLE"`
	UTCOffset   float64 `parquet:"name=utc_offset, type=DOUBLE"`
	Climate     string  `parquet:"name=climate, type=BYTE_ARRAY, convertedtype=UTF8"`

	AvgRateEnv         float64 `parquet:"name=avg_rate_env, type=DOUBLE"`
	SumRateEnv         float64 `parquet:"name=sum_rate_env, type=DOUBLE"`
	RateChamber        float64 `parquet:"name=rate_chamber, type=DOUBLE"`
	AccelerationFactor float64 `parquet:"name=acceleration_factor, type=DOUBLE"`
	Valid              bool    `parquet:"name=valid, type=BOOLEAN"`
	Reason             string  `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`

	RunID   string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	BuiltAt int64  `parquet:"name=built_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

func toDegradationRow(d *domain.DegradationSummary, meta domain.CatalogMeta) degradationRow {
	site := d.Site
	return degradationRow{
		SiteID:      site.ID,
		StationName: site.StationName,
		Country:     site.Country,
		State:       site.State,
		DataSource:  string(site.DataSource),
		Latitude:    site.Latitude,
		Longitude:   site.Longitude,
		ElevationM:  site.ElevationM,
		UTCOffset:   site.UTCOffset,
		Climate:     site.Climate,

		AvgRateEnv:         d.AvgRateEnv,
		SumRateEnv:         d.SumRateEnv,
		RateChamber:        d.RateChamber,
		AccelerationFactor: d.AccelerationFactor,
		Valid:              d.Valid,
		Reason:             d.Reason,

		RunID:   meta.RunID,
		BuiltAt: meta.BuiltAt.UnixMilli(),
	}
}

func (r *degradationRow) degradation() domain.DegradationSummary {
	return domain.DegradationSummary{
		Site: domain.SiteLocation{
			ID:          r.SiteID,
			StationName: r.StationName,
			Country:     r.Country,
			State:       r.State,
			DataSource:  domain.DataSource(r.DataSource),
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			ElevationM:  r.ElevationM,
			UTCOffset:   r.UTCOffset,
			Climate:     r.Climate,
		},
		AvgRateEnv:         r.AvgRateEnv,
		SumRateEnv:         r.SumRateEnv,
		RateChamber:        r.RateChamber,
		AccelerationFactor: r.AccelerationFactor,
		Valid:              r.Valid,
		Reason:             r.Reason,
	}
}

func (r *degradationRow) meta() domain.CatalogMeta {
	return domain.CatalogMeta{RunID: r.RunID, BuiltAt: time.UnixMilli(r.BuiltAt).UTC()}
}
