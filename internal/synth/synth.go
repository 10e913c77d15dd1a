// Package synth generates deterministic synthetic weather-file data: a site
// index and one year of hourly samples per site with plausible diurnal and
// seasonal shape. It feeds the genmock command and end-to-end tests.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

const solarConstant = 1361.0 // W/m^2

// Per-fixture heating above ambient at 1000 W/m^2 POA, indexed by FixtureType.
var (
	moduleRise = [domain.FixtureCount]float64{28, 21, 36, 30, 24, 40}
	cellRise   = [domain.FixtureCount]float64{3, 3, 3, 3, 3, 8}
)

var sources = []domain.DataSource{domain.DataSourceTMY3, domain.DataSourceCWEC, domain.DataSourceIWEC}

// Sites returns n sites spread over a latitude/longitude band. The same n
// always produces the same sites.
func Sites(n int) []domain.SiteLocation {
	sites := make([]domain.SiteLocation, n)
	for i := range sites {
		lat := -50 + math.Mod(float64(i)*37.3, 110)
		lon := -175 + math.Mod(float64(i)*71.9, 350)
		sites[i] = domain.SiteLocation{
			ID:          fmt.Sprintf("%06d", 700000+i*17),
			StationName: fmt.Sprintf("SYNTH STATION %d", i+1),
			Country:     "XX",
			State:       fmt.Sprintf("S%d", i%9),
			DataSource:  sources[i%len(sources)],
			Latitude:    math.Round(lat*1000) / 1000,
			Longitude:   math.Round(lon*1000) / 1000,
			ElevationM:  float64((i * 131) % 2400),
			UTCOffset:   math.Round(lon / 15),
		}
	}
	return sites
}

// Series returns one hourly sample per hour of year for site. seed varies the
// noise; the same (site, year, seed) always yields the same series.
func Series(site domain.SiteLocation, year int, seed uint64) domain.SiteSeries {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	hours := int(end.Sub(start) / time.Hour)

	rng := rand.New(rand.NewPCG(seed, uint64(len(site.ID))))
	latRad := site.Latitude * math.Pi / 180
	climate := 25 - math.Abs(site.Latitude)*0.45 - site.ElevationM*0.0065
	seasonSign := 1.0
	if site.Latitude < 0 {
		seasonSign = -1
	}

	samples := make([]domain.HourlySample, hours)
	cloud := 4.0
	for i := range samples {
		t := start.Add(time.Duration(i) * time.Hour)
		doy := float64(t.YearDay())
		hour := float64(t.Hour()) + 0.5

		decl := 23.44 * math.Pi / 180 * math.Sin(2*math.Pi*(284+doy)/365)
		hourAngle := (hour - 12) * 15 * math.Pi / 180
		cosZ := math.Sin(latRad)*math.Sin(decl) + math.Cos(latRad)*math.Cos(decl)*math.Cos(hourAngle)
		elev := math.Asin(clamp(cosZ, -1, 1)) * 180 / math.Pi

		cloud = clamp(cloud+rng.NormFloat64()*0.6, 0, 8)
		clearness := 0.75 - 0.06*cloud

		var ghi, dni, dhi float64
		if cosZ > 0 {
			ghi = solarConstant * cosZ * clearness
			dhi = ghi * (0.15 + 0.08*cloud)
			dni = (ghi - dhi) / math.Max(cosZ, 0.05)
		}
		poaDirect := dni * math.Max(cosZ, 0) * 1.1
		poaSky := dhi * 0.95
		poaGround := ghi * 0.2 * 0.05
		poaGlobal := poaDirect + poaSky + poaGround

		season := seasonSign * math.Sin(2*math.Pi*(doy-105)/365)
		diurnal := math.Sin((hour - 9) / 24 * 2 * math.Pi)
		dry := climate + 9*season + 5*diurnal + rng.NormFloat64()*0.8
		dew := dry - (4 + 3*math.Max(diurnal, 0) + rng.Float64()*2)
		wind := math.Abs(2.5 + rng.NormFloat64()*1.2)

		s := domain.HourlySample{
			LocalTime:        t,
			DryBulbC:         round(dry, 1),
			DewPointC:        round(dew, 1),
			RelativeHumidity: round(relativeHumidity(dry, dew), 0),
			StationPressure:  round(1013.25*math.Exp(-site.ElevationM/8434), 0),
			WindDirection:    math.Floor(rng.Float64() * 360),
			WindSpeed:        round(wind, 1),
			SkyCoverTenths:   math.Round(cloud * 10 / 8),
			SkyCoverOkta:     math.Round(cloud),
			Albedo:           0.2,
			GHI:              round(ghi, 1),
			DNI:              round(dni, 1),
			DHI:              round(dhi, 1),
			SolarZenith:      round(90-elev, 2),
			SolarAzimuth:     round(180+hourAngle*180/math.Pi, 2),
			SolarElevation:   round(elev, 2),
			AngleOfIncidence: round(math.Max(0, 90-elev-math.Abs(site.Latitude)/2), 2),
			POADirect:        round(poaDirect, 1),
			POADiffuse:       round(poaSky+poaGround, 1),
			POAGroundDiffuse: round(poaGround, 1),
			POASkyDiffuse:    round(poaSky, 1),
			POAGlobal:        round(poaGlobal, 1),
		}
		windCooling := 1 / (1 + 0.08*wind)
		for f := range domain.FixtureCount {
			module := dry + moduleRise[f]*poaGlobal/1000*windCooling
			s.ModuleTemp[f] = round(module, 2)
			s.CellTemp[f] = round(module+cellRise[f]*poaGlobal/1000, 2)
		}
		samples[i] = s
	}

	return domain.SiteSeries{Site: site, Samples: samples}
}

// relativeHumidity uses the Magnus approximation.
func relativeHumidity(dry, dew float64) float64 {
	const a, b = 17.625, 243.04
	rh := 100 * math.Exp(a*dew/(b+dew)) / math.Exp(a*dry/(b+dry))
	return clamp(rh, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
