// Command genmock writes a synthetic weather-file data directory: a sites.csv
// index plus one hourly file per site. It runs the real aggregator over the
// generated series and prints the figures integration tests assert against.
//
// Usage:
//
//	go run ./cmd/genmock -out data/sites -sites 12 -year 2001 -zstd
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/couchcryptid/pv-climate-etl/internal/aggregate"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/ingest"
	"github.com/couchcryptid/pv-climate-etl/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output data directory")
	n := flag.Int("sites", 12, "number of sites to generate")
	year := flag.Int("year", 2001, "calendar year of the hourly series")
	seed := flag.Uint64("seed", 1, "noise seed")
	compress := flag.Bool("zstd", false, "write hourly files as .csv.zst")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -sites > 0")
	}

	sites := synth.Sites(*n)
	if err := ingest.WriteSiteIndex(*out, sites); err != nil {
		return err
	}
	log.Printf("wrote site index: %d sites", len(sites))

	agg := aggregate.New(aggregate.DefaultOptions())
	summaries := make([]domain.AnnualSiteSummary, 0, len(sites))
	for _, site := range sites {
		series := synth.Series(site, *year, *seed)
		if err := ingest.WriteSeries(*out, series, *compress); err != nil {
			return fmt.Errorf("site %s: %w", site.ID, err)
		}
		s, err := agg.Aggregate(series)
		if err != nil {
			return fmt.Errorf("aggregate %s: %w", site.ID, err)
		}
		summaries = append(summaries, s)
	}
	log.Printf("wrote %d hourly files to %s", len(sites), *out)

	printStats(summaries)
	return nil
}

func printStats(rows []domain.AnnualSiteSummary) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Sites: %d\n", len(rows))

	sorted := make([]domain.AnnualSiteSummary, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GHISum > sorted[j].GHISum })

	fmt.Println("\nBy annual GHI (GJ/m^2):")
	for i := range sorted {
		s := &sorted[i]
		org := s.Fixtures[domain.OpenRackGlass]
		fmt.Printf("  %s  lat=%7.3f lon=%8.3f  ghi=%6.3f  poa=%6.3f  module_max=%5.1f  cell_98=%5.1f  dew=%7.1f\n",
			s.Site.ID, s.Site.Latitude, s.Site.Longitude,
			s.GHISum, s.POAGlobalSum, org.Module.Max, org.Cell98thAvg, s.DewYieldSum)
	}
}
