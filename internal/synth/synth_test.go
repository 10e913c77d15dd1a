package synth

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

func TestSitesDeterministicAndInRange(t *testing.T) {
	a := Sites(25)
	b := Sites(25)
	require.Empty(t, cmp.Diff(a, b))

	ids := map[string]bool{}
	for _, s := range a {
		assert.False(t, ids[s.ID], "duplicate id %s", s.ID)
		ids[s.ID] = true
		assert.GreaterOrEqual(t, s.Latitude, -90.0)
		assert.LessOrEqual(t, s.Latitude, 90.0)
		assert.GreaterOrEqual(t, s.Longitude, -180.0)
		assert.LessOrEqual(t, s.Longitude, 180.0)
		assert.NotEqual(t, domain.DataSourceUnknown, s.DataSource)
	}
}

func TestSeriesShape(t *testing.T) {
	site := Sites(3)[1]

	s := Series(site, 2001, 42)
	require.Len(t, s.Samples, 8760)
	assert.Len(t, Series(site, 2004, 42).Samples, 8784)
	assert.Empty(t, cmp.Diff(s, Series(site, 2001, 42)))

	var daylight int
	for i, smp := range s.Samples {
		assert.LessOrEqual(t, smp.DewPointC, smp.DryBulbC, "hour %d", i)
		assert.GreaterOrEqual(t, smp.GHI, 0.0)
		assert.GreaterOrEqual(t, smp.SkyCoverOkta, 0.0)
		assert.LessOrEqual(t, smp.SkyCoverOkta, 8.0)
		for f := range domain.FixtureCount {
			assert.GreaterOrEqual(t, smp.CellTemp[f], smp.ModuleTemp[f])
		}
		if smp.GHI > 0 {
			daylight++
		}
	}
	assert.Greater(t, daylight, 3000)
	assert.Less(t, daylight, 5800)
}

func TestSeriesSeedChangesNoise(t *testing.T) {
	site := Sites(1)[0]
	a := Series(site, 2001, 1)
	b := Series(site, 2001, 2)
	assert.NotEqual(t, a.Samples, b.Samples)
}
