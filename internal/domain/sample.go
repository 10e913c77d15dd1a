package domain

import "time"

// HourlySample is one row of a site's annual series, already enriched with
// solar position, plane-of-array irradiance, and per-fixture temperatures.
// Missing measurements are NaN.
type HourlySample struct {
	LocalTime     time.Time
	UniversalTime time.Time
	SolarTime     time.Time

	DryBulbC         float64
	DewPointC        float64
	RelativeHumidity float64 // %
	StationPressure  float64 // mbar
	WindDirection    float64 // degrees
	WindSpeed        float64 // m/s
	SkyCoverTenths   float64
	SkyCoverOkta     float64
	Albedo           float64
	CorrectedAlbedo  float64

	GHI float64 // W/m^2
	DNI float64
	DHI float64

	SolarZenith      float64
	SolarAzimuth     float64
	SolarElevation   float64
	AngleOfIncidence float64

	POADirect        float64
	POADiffuse       float64
	POAGroundDiffuse float64
	POASkyDiffuse    float64
	POAGlobal        float64

	CellTemp   [FixtureCount]float64 // C, indexed by FixtureType
	ModuleTemp [FixtureCount]float64
}

// Column names a per-site input series. The names match the normalized
// hourly file headers.
type Column string

const (
	ColLocalTime        Column = "local_time"
	ColUniversalTime    Column = "universal_time"
	ColSolarTime        Column = "solar_time"
	ColDryBulb          Column = "dry_bulb_c"
	ColDewPoint         Column = "dew_point_c"
	ColRelativeHumidity Column = "relative_humidity"
	ColStationPressure  Column = "station_pressure"
	ColWindDirection    Column = "wind_direction"
	ColWindSpeed        Column = "wind_speed"
	ColSkyCoverTenths   Column = "sky_cover_tenths"
	ColSkyCoverOkta     Column = "sky_cover_okta"
	ColAlbedo           Column = "albedo"
	ColGHI              Column = "ghi"
	ColDNI              Column = "dni"
	ColDHI              Column = "dhi"
	ColSolarZenith      Column = "solar_zenith"
	ColSolarAzimuth     Column = "solar_azimuth"
	ColSolarElevation   Column = "solar_elevation"
	ColAngleOfIncidence Column = "angle_of_incidence"
	ColPOADirect        Column = "poa_direct"
	ColPOADiffuse       Column = "poa_diffuse"
	ColPOAGroundDiffuse Column = "poa_ground_diffuse"
	ColPOASkyDiffuse    Column = "poa_sky_diffuse"
	ColPOAGlobal        Column = "poa_global"
)

// CellTempColumn is the cell temperature column for a fixture.
func CellTempColumn(f FixtureType) Column {
	return Column("cell_temp_" + f.String())
}

// ModuleTempColumn is the module temperature column for a fixture.
func ModuleTempColumn(f FixtureType) Column {
	return Column("module_temp_" + f.String())
}

// ColumnSet records which columns a loaded series actually carried.
type ColumnSet map[Column]struct{}

// NewColumnSet builds a set from the given columns.
func NewColumnSet(cols ...Column) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

// SiteSeries is one site's metadata plus its private hourly buffer.
type SiteSeries struct {
	Site    SiteLocation
	Samples []HourlySample

	// Columns lists the columns present in the source. A nil set means the
	// series was built in memory and every column is present.
	Columns ColumnSet
}

// HasColumn reports whether the series carries column c.
func (s SiteSeries) HasColumn(c Column) bool {
	if s.Columns == nil {
		return true
	}
	_, ok := s.Columns[c]
	return ok
}

// RequireColumns returns a MissingColumnError for the first absent column.
func (s SiteSeries) RequireColumns(cols ...Column) error {
	for _, c := range cols {
		if !s.HasColumn(c) {
			return &MissingColumnError{Column: string(c)}
		}
	}
	return nil
}
