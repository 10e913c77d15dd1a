package pipeline_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pv-climate-etl/internal/adapter/parquet"
	"github.com/couchcryptid/pv-climate-etl/internal/aggregate"
	"github.com/couchcryptid/pv-climate-etl/internal/catalog"
	"github.com/couchcryptid/pv-climate-etl/internal/config"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/ingest"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
	"github.com/couchcryptid/pv-climate-etl/internal/pipeline"
	"github.com/couchcryptid/pv-climate-etl/internal/synth"
)

// writeDataDir generates a weather-file directory with n synthetic sites plus
// one indexed site whose hourly file holds a header only.
func writeDataDir(t *testing.T, n int) (string, []domain.SiteLocation) {
	t.Helper()
	dir := t.TempDir()
	sites := synth.Sites(n + 1)
	require.NoError(t, ingest.WriteSiteIndex(dir, sites))
	for i, site := range sites[:n] {
		require.NoError(t, ingest.WriteSeries(dir, synth.Series(site, 2001, uint64(i)), i%2 == 1))
	}
	empty := domain.SiteSeries{Site: sites[n]}
	require.NoError(t, ingest.WriteSeries(dir, empty, false))
	return dir, sites
}

func TestPipeline_EndToEnd_BuildThenLoad(t *testing.T) {
	dataDir, sites := writeDataDir(t, 3)
	outDir := t.TempDir()
	opts := pipeline.Options{
		Mode:            config.CatalogModeBuild,
		CatalogPath:     filepath.Join(outDir, "catalog", "summary.parquet"),
		DegradationPath: filepath.Join(outDir, "catalog", "vant_hoff.parquet"),
		RankCacheSize:   4,
	}

	logger := testLogger()
	metrics := observability.NewMetricsForTesting()
	source := ingest.NewDirSource(dataDir, logger)
	agg := aggregate.New(aggregate.DefaultOptions())
	deg, err := catalog.NewDegradationBuilder(source, domain.DefaultDegradationParams(), 2, logger, metrics)
	require.NoError(t, err)
	store := parquet.NewStore(logger)

	built := pipeline.New(pipeline.Stages{
		Summaries:   catalog.NewBuilder(source, agg, 2, logger, metrics),
		Degradation: deg,
		Store:       store,
	}, opts, logger, metrics)
	require.NoError(t, built.Run(context.Background()))
	require.True(t, built.Ready())

	meta, rows, err := store.LoadSummaries(opts.CatalogPath)
	require.NoError(t, err)
	require.Len(t, rows, 3, "the empty site is excluded")
	assert.NotEmpty(t, meta.RunID)
	for i := range rows {
		assert.Equal(t, sites[i].ID, rows[i].Site.ID, "catalog keeps index order")
		assert.Equal(t, 8760, rows[i].SampleCount)
	}

	// Each persisted row equals an independent aggregation of the same file.
	series, err := source.Load(context.Background(), sites[1])
	require.NoError(t, err)
	want, err := agg.Aggregate(series)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, rows[1], cmpopts.EquateNaNs()))

	_, degRows, err := store.LoadDegradation(opts.DegradationPath)
	require.NoError(t, err)
	assert.Len(t, degRows, 3)

	assert.InDelta(t, 3, gaugeValue(t, metrics.CatalogSites), 0)
	// Both catalogs exclude the empty site.
	assert.InDelta(t, 2, counterValue(t, metrics.SiteFailures.WithLabelValues(string(domain.KindEmptySeries))), 0)

	// A second service instance serves the saved catalog without the source.
	loadOpts := opts
	loadOpts.Mode = config.CatalogModeLoad
	loaded := pipeline.New(pipeline.Stages{Store: store}, loadOpts, logger, observability.NewMetricsForTesting())
	require.NoError(t, loaded.Run(context.Background()))

	a, err := built.Nearest(sites[0].Latitude, sites[0].Longitude, 0)
	require.NoError(t, err)
	b, err := loaded.Nearest(sites[0].Latitude, sites[0].Longitude, 0)
	require.NoError(t, err)
	require.Len(t, b.Entries, 3)
	assert.Equal(t, sites[0].ID, b.Entries[0].Summary.Site.ID)
	assert.Empty(t, cmp.Diff(a, b, cmpopts.EquateNaNs()))
}
