package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataSource(t *testing.T) {
	tests := []struct {
		tag  string
		want DataSource
	}{
		{"TYA", DataSourceTMY3},
		{"tmy3", DataSourceTMY3},
		{" CWE ", DataSourceCWEC},
		{"CWEC", DataSourceCWEC},
		{"IW2", DataSourceIWEC},
		{"iwec", DataSourceIWEC},
		{"", DataSourceUnknown},
		{"EPW", DataSourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDataSource(tt.tag))
		})
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	require.Len(t, Fixtures(), FixtureCount)
	for _, f := range Fixtures() {
		b, err := f.MarshalText()
		require.NoError(t, err)

		var got FixtureType
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, f, got)
	}

	_, err := ParseFixtureType("ground_mount")
	var ip *InvalidParameterError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, "fixture", ip.Param)

	assert.False(t, FixtureType(6).Valid())
	assert.Equal(t, "fixture(6)", FixtureType(6).String())
}

func TestFixtureColumns(t *testing.T) {
	assert.Equal(t, Column("cell_temp_open_rack_glass"), CellTempColumn(OpenRackGlass))
	assert.Equal(t, Column("module_temp_concentrator_22x"), ModuleTempColumn(Concentrator22x))
}

func TestSiteSeriesColumns(t *testing.T) {
	t.Run("nil set means all present", func(t *testing.T) {
		s := SiteSeries{}
		assert.True(t, s.HasColumn(ColGHI))
		assert.NoError(t, s.RequireColumns(ColGHI, ColDewPoint))
	})

	t.Run("first missing column reported", func(t *testing.T) {
		s := SiteSeries{Columns: NewColumnSet(ColGHI)}
		err := s.RequireColumns(ColGHI, ColDNI, ColDHI)
		var mc *MissingColumnError
		require.ErrorAs(t, err, &mc)
		assert.Equal(t, "dni", mc.Column)
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{&MissingColumnError{Column: "ghi"}, KindMissingColumn},
		{fmt.Errorf("load: %w", &EmptySeriesError{SiteID: "5"}), KindEmptySeries},
		{&DivisionByZeroError{Op: "acceleration factor"}, KindDivisionByZero},
		{&InvalidParameterError{Param: "x", Reason: "bad"}, KindInvalidParameter},
		{errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNewSiteFailure(t *testing.T) {
	f := NewSiteFailure("site5", &EmptySeriesError{SiteID: "site5"})
	assert.Equal(t, KindEmptySeries, f.Kind)
	assert.Equal(t, "site site5 has an empty hourly series", f.Message)

	var es *EmptySeriesError
	assert.ErrorAs(t, f, &es)
}

func TestDegradationParamsValidate(t *testing.T) {
	require.NoError(t, DefaultDegradationParams().Validate())

	tests := []struct {
		name  string
		mut   func(p *DegradationParams)
		param string
	}{
		{"negative chamber irradiance", func(p *DegradationParams) { p.ChamberIrradiance = -1 }, "ChamberIrradiance"},
		{"zero multiplier", func(p *DegradationParams) { p.TempMultiplier = 0 }, "TempMultiplier"},
		{"negative exponent", func(p *DegradationParams) { p.FitExponent = -0.5 }, "FitExponent"},
		{"nan exponent", func(p *DegradationParams) { p.FitExponent = math.NaN() }, "FitExponent"},
		{"infinite reference", func(p *DegradationParams) { p.ReferenceTempC = math.Inf(1) }, "ReferenceTempC"},
		{"unknown fixture", func(p *DegradationParams) { p.Fixture = 9 }, "Fixture"},
		{"unknown temperature", func(p *DegradationParams) { p.Temperature = "ambient" }, "Temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultDegradationParams()
			tt.mut(&p)
			err := p.Validate()
			var ip *InvalidParameterError
			require.ErrorAs(t, err, &ip)
			assert.Equal(t, tt.param, ip.Param)
		})
	}
}

func TestDegradationParamsTemperatureColumn(t *testing.T) {
	p := DefaultDegradationParams()
	assert.Equal(t, Column("module_temp_open_rack_glass"), p.TemperatureColumn())

	p.Temperature = TemperatureCell
	p.Fixture = RoofMountGlass
	assert.Equal(t, Column("cell_temp_roof_mount_glass"), p.TemperatureColumn())
}

func TestSummaryColumns(t *testing.T) {
	cols := SummaryColumns()
	assert.Equal(t, "site_id", cols[0])
	assert.Equal(t, "sample_count", cols[len(cols)-1])
	assert.Contains(t, cols, "solder_fatigue_concentrator_22x")
	assert.Len(t, cols, 30+7*FixtureCount+1)
}

func TestSummaryValuesAlignWithColumns(t *testing.T) {
	s := AnnualSiteSummary{
		Site:        SiteLocation{ID: "724666", DataSource: DataSourceTMY3, Latitude: 39.57},
		GHISum:      6.1,
		DewYieldSum: math.NaN(),
		SampleCount: 8760,
	}
	s.Fixtures[Concentrator22x].SolderFatigue = 1.5

	vals := s.Values()
	require.Len(t, vals, len(SummaryColumns()))

	rec := s.Record()
	assert.Equal(t, "724666", rec["site_id"])
	assert.Equal(t, "TMY3", rec["data_source"])
	assert.Equal(t, 6.1, rec["ghi_sum"])
	assert.Nil(t, rec["dew_yield_sum"], "NaN becomes nil")
	assert.Equal(t, 1.5, rec["solder_fatigue_concentrator_22x"])
	assert.Equal(t, 8760, rec["sample_count"])
}

func TestDegradationValuesAlignWithColumns(t *testing.T) {
	d := DegradationSummary{
		Site:               SiteLocation{ID: "1"},
		AvgRateEnv:         0,
		AccelerationFactor: math.Inf(1),
		Reason:             "acceleration factor: division by zero",
	}
	require.Len(t, d.Values(), len(DegradationColumns()))

	rec := d.Record()
	assert.Nil(t, rec["acceleration_factor"])
	assert.Equal(t, false, rec["valid"])
	assert.Equal(t, 0.0, rec["avg_rate_env"])
}

func TestNowUsesClock(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed.UTC(), Now())
	assert.Equal(t, time.UTC, Now().Location())
}
