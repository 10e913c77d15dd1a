package ingest

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// siteRecord is one row of sites.csv.
type siteRecord struct {
	ID          string  `mapstructure:"site_id"`
	StationName string  `mapstructure:"station_name"`
	Country     string  `mapstructure:"country"`
	State       string  `mapstructure:"state"`
	FormatTag   string  `mapstructure:"format_tag"`
	Latitude    float64 `mapstructure:"latitude"`
	Longitude   float64 `mapstructure:"longitude"`
	ElevationM  float64 `mapstructure:"elevation_m"`
	UTCOffset   float64 `mapstructure:"utc_offset"`
	Climate     string  `mapstructure:"climate"`
}

func (r siteRecord) location() domain.SiteLocation {
	return domain.SiteLocation{
		ID:          strings.TrimSpace(r.ID),
		StationName: r.StationName,
		Country:     r.Country,
		State:       r.State,
		DataSource:  domain.ParseDataSource(r.FormatTag),
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		ElevationM:  r.ElevationM,
		UTCOffset:   r.UTCOffset,
		Climate:     r.Climate,
	}
}

// hourlyRecord is one row of a site's hourly file.
type hourlyRecord struct {
	LocalTime     time.Time `mapstructure:"local_time"`
	UniversalTime time.Time `mapstructure:"universal_time"`
	SolarTime     time.Time `mapstructure:"solar_time"`

	DryBulbC         float64 `mapstructure:"dry_bulb_c"`
	DewPointC        float64 `mapstructure:"dew_point_c"`
	RelativeHumidity float64 `mapstructure:"relative_humidity"`
	StationPressure  float64 `mapstructure:"station_pressure"`
	WindDirection    float64 `mapstructure:"wind_direction"`
	WindSpeed        float64 `mapstructure:"wind_speed"`
	SkyCoverTenths   float64 `mapstructure:"sky_cover_tenths"`
	SkyCoverOkta     float64 `mapstructure:"sky_cover_okta"`
	Albedo           float64 `mapstructure:"albedo"`

	GHI float64 `mapstructure:"ghi"`
	DNI float64 `mapstructure:"dni"`
	DHI float64 `mapstructure:"dhi"`

	SolarZenith      float64 `mapstructure:"solar_zenith"`
	SolarAzimuth     float64 `mapstructure:"solar_azimuth"`
	SolarElevation   float64 `mapstructure:"solar_elevation"`
	AngleOfIncidence float64 `mapstructure:"angle_of_incidence"`

	POADirect        float64 `mapstructure:"poa_direct"`
	POADiffuse       float64 `mapstructure:"poa_diffuse"`
	POAGroundDiffuse float64 `mapstructure:"poa_ground_diffuse"`
	POASkyDiffuse    float64 `mapstructure:"poa_sky_diffuse"`
	POAGlobal        float64 `mapstructure:"poa_global"`

	CellOpenRackGlass         float64 `mapstructure:"cell_temp_open_rack_glass"`
	CellRoofMountGlass        float64 `mapstructure:"cell_temp_roof_mount_glass"`
	CellOpenRackPolymer       float64 `mapstructure:"cell_temp_open_rack_polymer"`
	CellInsulatedBackPolymer  float64 `mapstructure:"cell_temp_insulated_back_polymer"`
	CellOpenRackThinfilmSteel float64 `mapstructure:"cell_temp_open_rack_thinfilm_steel"`
	CellConcentrator22x       float64 `mapstructure:"cell_temp_concentrator_22x"`

	ModuleOpenRackGlass         float64 `mapstructure:"module_temp_open_rack_glass"`
	ModuleRoofMountGlass        float64 `mapstructure:"module_temp_roof_mount_glass"`
	ModuleOpenRackPolymer       float64 `mapstructure:"module_temp_open_rack_polymer"`
	ModuleInsulatedBackPolymer  float64 `mapstructure:"module_temp_insulated_back_polymer"`
	ModuleOpenRackThinfilmSteel float64 `mapstructure:"module_temp_open_rack_thinfilm_steel"`
	ModuleConcentrator22x       float64 `mapstructure:"module_temp_concentrator_22x"`
}

func (r hourlyRecord) sample() domain.HourlySample {
	return domain.HourlySample{
		LocalTime:        r.LocalTime,
		UniversalTime:    r.UniversalTime,
		SolarTime:        r.SolarTime,
		DryBulbC:         r.DryBulbC,
		DewPointC:        r.DewPointC,
		RelativeHumidity: r.RelativeHumidity,
		StationPressure:  r.StationPressure,
		WindDirection:    r.WindDirection,
		WindSpeed:        r.WindSpeed,
		SkyCoverTenths:   r.SkyCoverTenths,
		SkyCoverOkta:     r.SkyCoverOkta,
		Albedo:           r.Albedo,
		GHI:              r.GHI,
		DNI:              r.DNI,
		DHI:              r.DHI,
		SolarZenith:      r.SolarZenith,
		SolarAzimuth:     r.SolarAzimuth,
		SolarElevation:   r.SolarElevation,
		AngleOfIncidence: r.AngleOfIncidence,
		POADirect:        r.POADirect,
		POADiffuse:       r.POADiffuse,
		POAGroundDiffuse: r.POAGroundDiffuse,
		POASkyDiffuse:    r.POASkyDiffuse,
		POAGlobal:        r.POAGlobal,
		CellTemp: [domain.FixtureCount]float64{
			r.CellOpenRackGlass,
			r.CellRoofMountGlass,
			r.CellOpenRackPolymer,
			r.CellInsulatedBackPolymer,
			r.CellOpenRackThinfilmSteel,
			r.CellConcentrator22x,
		},
		ModuleTemp: [domain.FixtureCount]float64{
			r.ModuleOpenRackGlass,
			r.ModuleRoofMountGlass,
			r.ModuleOpenRackPolymer,
			r.ModuleInsulatedBackPolymer,
			r.ModuleOpenRackThinfilmSteel,
			r.ModuleConcentrator22x,
		},
	}
}

// hourlyColumns lists every column an hourly file may carry.
func hourlyColumns() []domain.Column {
	cols := []domain.Column{
		domain.ColLocalTime, domain.ColUniversalTime, domain.ColSolarTime,
		domain.ColDryBulb, domain.ColDewPoint, domain.ColRelativeHumidity,
		domain.ColStationPressure, domain.ColWindDirection, domain.ColWindSpeed,
		domain.ColSkyCoverTenths, domain.ColSkyCoverOkta, domain.ColAlbedo,
		domain.ColGHI, domain.ColDNI, domain.ColDHI,
		domain.ColSolarZenith, domain.ColSolarAzimuth, domain.ColSolarElevation, domain.ColAngleOfIncidence,
		domain.ColPOADirect, domain.ColPOADiffuse, domain.ColPOAGroundDiffuse, domain.ColPOASkyDiffuse, domain.ColPOAGlobal,
	}
	for _, f := range domain.Fixtures() {
		cols = append(cols, domain.CellTempColumn(f), domain.ModuleTempColumn(f))
	}
	return cols
}

var timeType = reflect.TypeOf(time.Time{})

// blankToNaN decodes an empty or "NA" cell into NaN for float fields and the
// zero time for time fields.
func blankToNaN(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	s = strings.TrimSpace(s)
	if s != "" && !strings.EqualFold(s, "NA") {
		return data, nil
	}
	switch {
	case to.Kind() == reflect.Float64:
		return math.NaN(), nil
	case to == timeType:
		return time.Time{}, nil
	default:
		return data, nil
	}
}

// stringToTimestamp parses a timestamp cell for time.Time fields.
func stringToTimestamp(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || to != timeType {
		return data, nil
	}
	return ParseTimestamp(s)
}

func decode(input map[string]string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(blankToNaN, stringToTimestamp),
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	return dec.Decode(input)
}
