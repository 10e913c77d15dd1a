package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// WriteSiteIndex writes sites.csv into dir in the layout List reads.
func WriteSiteIndex(dir string, sites []domain.SiteLocation) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, SitesFile))
	if err != nil {
		return fmt.Errorf("create site index: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"site_id", "station_name", "country", "state", "format_tag",
		"latitude", "longitude", "elevation_m", "utc_offset", "climate"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sites {
		rec := []string{s.ID, s.StationName, s.Country, s.State, string(s.DataSource),
			formatFloat(s.Latitude), formatFloat(s.Longitude), formatFloat(s.ElevationM),
			formatFloat(s.UTCOffset), s.Climate}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write site index: %w", err)
	}
	return f.Close()
}

// WriteSeries writes one site's hourly file into dir, as <id>.csv.zst when
// compress is set. Universal and solar time columns are written only when
// the first sample carries them, so Load derives them otherwise.
func WriteSeries(dir string, series domain.SiteSeries, compress bool) (err error) {
	name := filepath.Join(dir, series.Site.ID+".csv")
	if compress {
		name += ".zst"
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create site %s: %w", series.Site.ID, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if compress {
		enc, zerr := zstd.NewWriter(f)
		if zerr != nil {
			return fmt.Errorf("zstd writer for site %s: %w", series.Site.ID, zerr)
		}
		defer func() {
			if cerr := enc.Close(); err == nil && cerr != nil {
				err = cerr
			}
		}()
		w = enc
	}

	cols := writtenColumns(series)
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for i := range series.Samples {
		vals := sampleCells(&series.Samples[i])
		for j, c := range cols {
			rec[j] = vals[c]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write site %s: %w", series.Site.ID, err)
	}
	return nil
}

func writtenColumns(series domain.SiteSeries) []domain.Column {
	var first domain.HourlySample
	if len(series.Samples) > 0 {
		first = series.Samples[0]
	}
	var cols []domain.Column
	for _, c := range hourlyColumns() {
		switch {
		case c == domain.ColUniversalTime && first.UniversalTime.IsZero():
			continue
		case c == domain.ColSolarTime && first.SolarTime.IsZero():
			continue
		case !series.HasColumn(c):
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func sampleCells(s *domain.HourlySample) map[domain.Column]string {
	m := map[domain.Column]string{
		domain.ColLocalTime:        formatTime(s.LocalTime),
		domain.ColUniversalTime:    formatTime(s.UniversalTime),
		domain.ColSolarTime:        formatTime(s.SolarTime),
		domain.ColDryBulb:          formatFloat(s.DryBulbC),
		domain.ColDewPoint:         formatFloat(s.DewPointC),
		domain.ColRelativeHumidity: formatFloat(s.RelativeHumidity),
		domain.ColStationPressure:  formatFloat(s.StationPressure),
		domain.ColWindDirection:    formatFloat(s.WindDirection),
		domain.ColWindSpeed:        formatFloat(s.WindSpeed),
		domain.ColSkyCoverTenths:   formatFloat(s.SkyCoverTenths),
		domain.ColSkyCoverOkta:     formatFloat(s.SkyCoverOkta),
		domain.ColAlbedo:           formatFloat(s.Albedo),
		domain.ColGHI:              formatFloat(s.GHI),
		domain.ColDNI:              formatFloat(s.DNI),
		domain.ColDHI:              formatFloat(s.DHI),
		domain.ColSolarZenith:      formatFloat(s.SolarZenith),
		domain.ColSolarAzimuth:     formatFloat(s.SolarAzimuth),
		domain.ColSolarElevation:   formatFloat(s.SolarElevation),
		domain.ColAngleOfIncidence: formatFloat(s.AngleOfIncidence),
		domain.ColPOADirect:        formatFloat(s.POADirect),
		domain.ColPOADiffuse:       formatFloat(s.POADiffuse),
		domain.ColPOAGroundDiffuse: formatFloat(s.POAGroundDiffuse),
		domain.ColPOASkyDiffuse:    formatFloat(s.POASkyDiffuse),
		domain.ColPOAGlobal:        formatFloat(s.POAGlobal),
	}
	for _, f := range domain.Fixtures() {
		m[domain.CellTempColumn(f)] = formatFloat(s.CellTemp[f])
		m[domain.ModuleTempColumn(f)] = formatFloat(s.ModuleTemp[f])
	}
	return m
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
