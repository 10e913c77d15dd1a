// Command validate performs data integrity checks on a saved site catalog
// against the weather-file directory it was built from. It verifies site
// coverage, statistical invariants of every row, and that re-aggregating a
// sample of sites reproduces the persisted values exactly.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data/sites \
//	  -catalog data/catalog/summary.parquet \
//	  -degradation data/catalog/vant_hoff.parquet
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/pv-climate-etl/internal/adapter/parquet"
	"github.com/couchcryptid/pv-climate-etl/internal/aggregate"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/ingest"
	"github.com/couchcryptid/pv-climate-etl/internal/pvmodel"
)

const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "weather-file directory the catalog was built from")
	catalogPath := flag.String("catalog", "", "path to the summary catalog parquet file")
	degradationPath := flag.String("degradation", "", "optional path to the Van't Hoff catalog parquet file")
	sample := flag.Int("recompute", 3, "number of sites to re-aggregate from source")
	flag.Parse()

	if *dataDir == "" || *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, *catalogPath, *degradationPath, *sample); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, catalogPath, degradationPath string, sample int) int {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := parquet.NewStore(logger)
	source := ingest.NewDirSource(dataDir, logger)

	fmt.Println("=== PV Climate Catalog Validation ===")
	fmt.Println()

	sites, err := source.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: list sites: %v\n", err)
		return 1
	}

	meta, rows, err := store.LoadSummaries(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCoverage(sites, rows),
		validateTemperatures(rows),
		validateIrradiance(rows),
		validateMoisture(rows),
		validateRecompute(ctx, source, rows, sample),
	}
	if degradationPath != "" {
		_, deg, err := store.LoadDegradation(degradationPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load degradation catalog: %v\n", err)
			return 1
		}
		phases = append(phases, validateDegradation(deg, rows))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Catalog run %s built %s: %d rows from %d indexed sites\n",
		meta.RunID, meta.BuiltAt.Format("2006-01-02T15:04:05Z"), len(rows), len(sites))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Coverage ──
// Every catalog row names an indexed site exactly once, with its metadata intact.

func validateCoverage(sites []domain.SiteLocation, rows []domain.AnnualSiteSummary) *phase {
	p := &phase{name: "Phase 1: Site Coverage"}

	indexed := make(map[string]domain.SiteLocation, len(sites))
	for _, s := range sites {
		indexed[s.ID] = s
	}

	seen := make(map[string]bool, len(rows))
	for i := range rows {
		r := &rows[i]
		if seen[r.Site.ID] {
			p.errorf("site %s appears more than once", r.Site.ID)
		}
		seen[r.Site.ID] = true

		want, ok := indexed[r.Site.ID]
		if !ok {
			p.errorf("site %s is not in the site index", r.Site.ID)
			continue
		}
		if diff := cmp.Diff(want, r.Site); diff != "" {
			p.errorf("site %s metadata differs from index (-index +catalog):\n%s", r.Site.ID, diff)
		}
	}

	if missing := len(sites) - len(seen); missing > 0 {
		fmt.Printf("  note: %d indexed sites have no catalog row (excluded at build time)\n", missing)
	}
	return p
}

// ── Phase 2: Temperatures ──

func validateTemperatures(rows []domain.AnnualSiteSummary) *phase {
	p := &phase{name: "Phase 2: Temperature Statistics"}

	for i := range rows {
		r := &rows[i]
		checkStats(p, r.Site.ID, "ambient", r.Ambient)
		for _, f := range domain.Fixtures() {
			fs := r.Fixtures[f]
			label := "module " + f.String()
			checkStats(p, r.Site.ID, label, fs.Module)
			if !math.IsNaN(fs.Module98thAvg) && (fs.Module98thAvg < fs.Module.Avg-tolerance || fs.Module98thAvg > fs.Module.Max+tolerance) {
				p.errorf("site %s %s: 98th avg %.3f outside [avg %.3f, max %.3f]",
					r.Site.ID, label, fs.Module98thAvg, fs.Module.Avg, fs.Module.Max)
			}
			if fs.SolderFatigue < 0 {
				p.errorf("site %s %s: negative solder fatigue %g", r.Site.ID, f, fs.SolderFatigue)
			}
		}
	}
	return p
}

func checkStats(p *phase, id, label string, s domain.TemperatureStats) {
	if math.IsNaN(s.Min) || math.IsNaN(s.Max) {
		return
	}
	if s.Min > s.Avg+tolerance || s.Avg > s.Max+tolerance {
		p.errorf("site %s %s: expected min <= avg <= max, got %.3f/%.3f/%.3f", id, label, s.Min, s.Avg, s.Max)
	}
	if math.Abs(s.Range-(s.Max-s.Min)) > tolerance {
		p.errorf("site %s %s: range %.6f != max-min %.6f", id, label, s.Range, s.Max-s.Min)
	}
}

// ── Phase 3: Irradiance and UV ──

func validateIrradiance(rows []domain.AnnualSiteSummary) *phase {
	p := &phase{name: "Phase 3: Irradiance and UV Dose"}

	for i := range rows {
		r := &rows[i]
		sums := map[string]float64{
			"ghi": r.GHISum, "dni": r.DNISum, "dhi": r.DHISum,
			"poa_global": r.POAGlobalSum, "poa_direct": r.POADirectSum,
		}
		for name, v := range sums {
			if v < 0 {
				p.errorf("site %s: negative %s sum %g", r.Site.ID, name, v)
			}
		}

		wantGlobal := pvmodel.GJToMJ(r.GHISum * 0.05)
		if !closeTo(r.GlobalUVDose, wantGlobal) {
			p.errorf("site %s: global UV dose %g, want 5%% of GHI = %g", r.Site.ID, r.GlobalUVDose, wantGlobal)
		}
		wantTilt := pvmodel.GJToMJ(r.POAGlobalSum) * 0.05
		if !closeTo(r.UVDoseLatitudeTilt, wantTilt) {
			p.errorf("site %s: tilt UV dose %g, want 5%% of POA global = %g", r.Site.ID, r.UVDoseLatitudeTilt, wantTilt)
		}
	}
	return p
}

// ── Phase 4: Moisture ──

func validateMoisture(rows []domain.AnnualSiteSummary) *phase {
	p := &phase{name: "Phase 4: Moisture"}

	for i := range rows {
		r := &rows[i]
		if r.DewYieldSum < 0 {
			p.errorf("site %s: negative dew yield sum %g", r.Site.ID, r.DewYieldSum)
		}
		if r.HoursRHAbove85 < 0 || r.HoursRHAbove85 > r.SampleCount {
			p.errorf("site %s: %d hours above 85%% RH out of %d samples", r.Site.ID, r.HoursRHAbove85, r.SampleCount)
		}
		if r.WaterVaporPressureAvg < 0 {
			p.errorf("site %s: negative mean water vapor pressure %g", r.Site.ID, r.WaterVaporPressureAvg)
		}
	}
	return p
}

// ── Phase 5: Recompute ──
// Re-aggregating a site from source must reproduce its persisted row.

func validateRecompute(ctx context.Context, source *ingest.DirSource, rows []domain.AnnualSiteSummary, n int) *phase {
	p := &phase{name: "Phase 5: Recompute From Source"}
	agg := aggregate.New(aggregate.DefaultOptions())

	for i := range rows[:min(max(n, 0), len(rows))] {
		r := &rows[i]
		series, err := source.Load(ctx, r.Site)
		if err != nil {
			p.errorf("site %s: load: %v", r.Site.ID, err)
			continue
		}
		got, err := agg.Aggregate(series)
		if err != nil {
			p.errorf("site %s: aggregate: %v", r.Site.ID, err)
			continue
		}
		if diff := cmp.Diff(*r, got, cmpopts.EquateNaNs()); diff != "" {
			p.errorf("site %s differs from recomputation (-catalog +recomputed):\n%s", r.Site.ID, diff)
		}
	}
	return p
}

// ── Phase 6: Degradation ──

func validateDegradation(deg []domain.DegradationSummary, rows []domain.AnnualSiteSummary) *phase {
	p := &phase{name: "Phase 6: Van't Hoff Degradation"}

	summarized := make(map[string]bool, len(rows))
	for i := range rows {
		summarized[rows[i].Site.ID] = true
	}

	for i := range deg {
		d := &deg[i]
		if !summarized[d.Site.ID] {
			p.errorf("site %s has a degradation row but no summary row", d.Site.ID)
		}
		if !d.Valid {
			if d.Reason == "" {
				p.errorf("site %s: invalid row carries no reason", d.Site.ID)
			}
			continue
		}
		if d.AvgRateEnv <= 0 || d.SumRateEnv < d.AvgRateEnv {
			p.errorf("site %s: expected 0 < avg rate <= sum rate, got %g/%g", d.Site.ID, d.AvgRateEnv, d.SumRateEnv)
		}
		if math.IsNaN(d.AccelerationFactor) || math.IsInf(d.AccelerationFactor, 0) || d.AccelerationFactor <= 0 {
			p.errorf("site %s: acceleration factor %g is not positive and finite", d.Site.ID, d.AccelerationFactor)
		}
		if !closeTo(d.AccelerationFactor, d.RateChamber/d.AvgRateEnv) {
			p.errorf("site %s: acceleration factor %g != chamber/avg %g", d.Site.ID, d.AccelerationFactor, d.RateChamber/d.AvgRateEnv)
		}
	}
	return p
}

func closeTo(got, want float64) bool {
	if math.IsNaN(got) && math.IsNaN(want) {
		return true
	}
	return math.Abs(got-want) <= tolerance*math.Max(1, math.Abs(want))
}
