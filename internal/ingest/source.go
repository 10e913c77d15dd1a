// Package ingest loads normalized per-site weather files from a directory.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/pvmodel"
)

// SitesFile is the site index inside a data directory.
const SitesFile = "sites.csv"

// DirSource reads a site index and one hourly file per site from dir.
// Hourly files are <site_id>.csv or <site_id>.csv.zst.
type DirSource struct {
	dir    string
	logger *slog.Logger
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string, logger *slog.Logger) *DirSource {
	return &DirSource{dir: dir, logger: logger}
}

// List returns every site in sites.csv, in file order.
func (s *DirSource) List(ctx context.Context) ([]domain.SiteLocation, error) {
	f, err := os.Open(filepath.Join(s.dir, SitesFile))
	if err != nil {
		return nil, fmt.Errorf("open site index: %w", err)
	}
	defer f.Close()

	var sites []domain.SiteLocation
	seen := make(map[string]bool)
	_, err = readRows(ctx, f, func(row map[string]string) error {
		var rec siteRecord
		if err := decode(row, &rec); err != nil {
			return err
		}
		loc := rec.location()
		if loc.ID == "" {
			return errors.New("site_id is empty")
		}
		if seen[loc.ID] {
			return fmt.Errorf("duplicate site_id %q", loc.ID)
		}
		seen[loc.ID] = true
		sites = append(sites, loc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read site index: %w", err)
	}
	return sites, nil
}

// Load reads and normalizes the hourly series for site.
func (s *DirSource) Load(ctx context.Context, site domain.SiteLocation) (domain.SiteSeries, error) {
	r, closeFn, err := s.openHourly(site.ID)
	if err != nil {
		return domain.SiteSeries{}, err
	}
	defer closeFn()

	series := domain.SiteSeries{Site: site}
	known := hourlyColumns()

	header, err := readRows(ctx, r, func(row map[string]string) error {
		for _, c := range known {
			if _, ok := row[string(c)]; !ok {
				row[string(c)] = ""
			}
		}

		var rec hourlyRecord
		if err := decode(row, &rec); err != nil {
			return err
		}
		series.Samples = append(series.Samples, rec.sample())
		return nil
	})
	if err != nil {
		return domain.SiteSeries{}, fmt.Errorf("read site %s: %w", site.ID, err)
	}
	series.Columns = domain.NewColumnSet()
	for _, h := range header {
		series.Columns[domain.Column(h)] = struct{}{}
	}

	normalize(&series)
	s.logger.Debug("site loaded", "site_id", site.ID, "samples", len(series.Samples))
	return series, nil
}

// normalize fills derived columns the file did not carry.
func normalize(series *domain.SiteSeries) {
	site := series.Site
	hasOkta := series.HasColumn(domain.ColSkyCoverOkta)
	hasTenths := series.HasColumn(domain.ColSkyCoverTenths)
	hasUT := series.HasColumn(domain.ColUniversalTime)
	hasSolar := series.HasColumn(domain.ColSolarTime)
	hasLocal := series.HasColumn(domain.ColLocalTime)

	for i := range series.Samples {
		smp := &series.Samples[i]
		smp.CorrectedAlbedo = pvmodel.CorrectAlbedo(smp.Albedo)
		if !hasOkta && hasTenths {
			smp.SkyCoverOkta = pvmodel.TenthsToOkta(smp.SkyCoverTenths)
		}
		if hasLocal && !smp.LocalTime.IsZero() {
			if !hasUT {
				smp.UniversalTime = pvmodel.UniversalTime(smp.LocalTime, site.UTCOffset)
			}
			if !hasSolar {
				smp.SolarTime = pvmodel.LocalSolarTime(smp.LocalTime, site.Longitude, site.UTCOffset)
			}
		}
	}

	if !hasOkta && hasTenths {
		series.Columns[domain.ColSkyCoverOkta] = struct{}{}
	}
	if hasLocal {
		series.Columns[domain.ColUniversalTime] = struct{}{}
		series.Columns[domain.ColSolarTime] = struct{}{}
	}
}

func (s *DirSource) openHourly(id string) (io.Reader, func(), error) {
	base := filepath.Join(s.dir, id+".csv")
	if f, err := os.Open(base); err == nil {
		return f, func() { f.Close() }, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("open site %s: %w", id, err)
	}

	f, err := os.Open(base + ".zst")
	if err != nil {
		return nil, nil, fmt.Errorf("open site %s: %w", id, err)
	}
	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("zstd reader for site %s: %w", id, err)
	}
	return dec, func() {
		dec.Close()
		f.Close()
	}, nil
}

// readRows streams a CSV with a header row, calling fn with each row keyed by
// normalized header name. It returns the normalized header.
func readRows(ctx context.Context, r io.Reader, fn func(row map[string]string) error) ([]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = normalizeHeader(header[i])
	}
	cr.FieldsPerRecord = len(header)

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return header, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return header, nil
		}
		if err != nil {
			return header, fmt.Errorf("line %d: %w", line, err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		if err := fn(row); err != nil {
			return header, fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
