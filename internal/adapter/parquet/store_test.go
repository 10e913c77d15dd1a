package parquet

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

func testStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testMeta() domain.CatalogMeta {
	return domain.CatalogMeta{
		RunID:   "3f1c0b8e-6f4e-4b8e-9a57-0c7f3f0f8d21",
		BuiltAt: time.Date(2026, 5, 4, 3, 2, 1, 500_000_000, time.UTC),
	}
}

func sampleSummary(id string, seed float64) domain.AnnualSiteSummary {
	s := domain.AnnualSiteSummary{
		Site: domain.SiteLocation{
			ID:          id,
			StationName: "STATION " + id,
			Country:     "USA",
			State:       "AZ",
			DataSource:  domain.DataSourceTMY3,
			Latitude:    33.45 + seed,
			Longitude:   -111.98 - seed,
			ElevationM:  337,
			UTCOffset:   -7,
			Climate:     "BWh",
		},
		GHISum:                7.4 + seed,
		DNISum:                9.1,
		DHISum:                2.0,
		POADirectSum:          6.6,
		POADiffuseSum:         1.9,
		POAGroundDiffuseSum:   0.2,
		POASkyDiffuseSum:      1.7,
		POAGlobalSum:          8.5,
		GlobalUVDose:          370,
		UVDoseLatitudeTilt:    425,
		Ambient:               domain.TemperatureStats{Min: -2, Avg: 23.5, Max: 46, Range: 48},
		WaterVaporPressureAvg: 0.9,
		WaterVaporPressureSum: 7884,
		HoursRHAbove85:        112,
		DewYieldSum:           math.NaN(),
		RelativePowerSum:      4200,
		RelativePowerAvg:      0.48,
		SampleCount:           8760,
	}
	for _, f := range domain.Fixtures() {
		base := float64(f) + seed
		s.Fixtures[f] = domain.FixtureSummary{
			Fixture:       f,
			Cell98thAvg:   70 + base,
			Module98thAvg: 67 + base,
			Module:        domain.TemperatureStats{Min: -5 + base, Avg: 28 + base, Max: 72 + base, Range: 77},
			SolderFatigue: 1.2 + base/10,
		}
	}
	return s
}

func TestSummariesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog", "summary.parquet")
	rows := []domain.AnnualSiteSummary{sampleSummary("722780", 0), sampleSummary("723860", 1.5)}

	store := testStore()
	require.NoError(t, store.SaveSummaries(path, testMeta(), rows))

	meta, got, err := store.LoadSummaries(path)
	require.NoError(t, err)
	assert.Equal(t, testMeta(), meta)
	if diff := cmp.Diff(rows, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file removed")
}

func TestSummariesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.parquet")
	store := testStore()

	require.NoError(t, store.SaveSummaries(path, testMeta(), []domain.AnnualSiteSummary{sampleSummary("a", 0), sampleSummary("b", 1)}))
	require.NoError(t, store.SaveSummaries(path, testMeta(), []domain.AnnualSiteSummary{sampleSummary("c", 2)}))

	_, got, err := store.LoadSummaries(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Site.ID)
}

func TestSummariesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	store := testStore()
	require.NoError(t, store.SaveSummaries(path, testMeta(), nil))

	meta, got, err := store.LoadSummaries(path)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, domain.CatalogMeta{}, meta)
}

func TestLoadSummariesMissingFile(t *testing.T) {
	_, _, err := testStore().LoadSummaries(filepath.Join(t.TempDir(), "absent.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load summaries")
}

func TestDegradationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vant_hoff.parquet")
	rows := []domain.DegradationSummary{
		{
			Site:               domain.SiteLocation{ID: "1", DataSource: domain.DataSourceCWEC, Latitude: 49.2, Longitude: -123.2},
			AvgRateEnv:         12.5,
			SumRateEnv:         109500,
			RateChamber:        137.3,
			AccelerationFactor: 10.98,
			Valid:              true,
		},
		{
			Site:        domain.SiteLocation{ID: "2", DataSource: domain.DataSourceUnknown},
			RateChamber: 137.3,
			Reason:      "acceleration factor: division by zero",
		},
	}

	store := testStore()
	require.NoError(t, store.SaveDegradation(path, testMeta(), rows))

	meta, got, err := store.LoadDegradation(path)
	require.NoError(t, err)
	assert.Equal(t, testMeta(), meta)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
