package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/sites", cfg.DataDir)
	assert.Equal(t, CatalogModeBuild, cfg.CatalogMode)
	assert.Equal(t, "./data/catalog/summary.parquet", cfg.CatalogPath)
	assert.Equal(t, "./data/catalog/vant_hoff.parquet", cfg.DegradationPath)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 54.8, cfg.ReversalTempC)
	assert.True(t, cfg.DegradationEnabled)
	assert.Equal(t, 0.64, cfg.DegFitExponent)
	assert.Equal(t, 2189.0, cfg.DegChamberIrradiance)
	assert.Equal(t, 1.41, cfg.DegTempMultiplier)
	assert.Equal(t, 60.0, cfg.DegReferenceTempC)
	assert.Equal(t, "open_rack_glass", cfg.DegFixture)
	assert.Equal(t, "module", cfg.DegTemperature)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "pv-site-summaries", cfg.KafkaSinkTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 1000, cfg.RankCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/tmy")
	t.Setenv("CATALOG_MODE", "load")
	t.Setenv("CATALOG_PATH", "/srv/catalog.parquet")
	t.Setenv("WORKER_COUNT", "16")
	t.Setenv("REVERSAL_TEMP_C", "58.8")
	t.Setenv("DEGRADATION_ENABLED", "false")
	t.Setenv("DEG_FIXTURE", "roof_mount_glass")
	t.Setenv("DEG_TEMPERATURE", "cell")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("RANK_CACHE_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/tmy", cfg.DataDir)
	assert.Equal(t, CatalogModeLoad, cfg.CatalogMode)
	assert.Equal(t, "/srv/catalog.parquet", cfg.CatalogPath)
	assert.Equal(t, 16, cfg.WorkerCount)
	assert.Equal(t, 58.8, cfg.ReversalTempC)
	assert.False(t, cfg.DegradationEnabled)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10, cfg.RankCacheSize)

	params, err := cfg.DegradationParams()
	require.NoError(t, err)
	assert.Equal(t, domain.RoofMountGlass, params.Fixture)
	assert.Equal(t, domain.TemperatureCell, params.Temperature)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
		{"WORKER_COUNT", "0"},
		{"WORKER_COUNT", "many"},
		{"RANK_CACHE_SIZE", "-3"},
		{"REVERSAL_TEMP_C", "hot"},
		{"DEG_CHAMBER_IRRADIANCE", "NaN"},
		{"DEGRADATION_ENABLED", "maybe"},
		{"KAFKA_ENABLED", "yes please"},
		{"CATALOG_MODE", "stream"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestDegradationParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		params, err := cfg.DegradationParams()
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDegradationParams(), params)
	})

	t.Run("unknown fixture", func(t *testing.T) {
		t.Setenv("DEG_FIXTURE", "carport")
		cfg, err := Load()
		require.NoError(t, err)

		_, err = cfg.DegradationParams()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DEG_FIXTURE")
		assert.Equal(t, domain.KindInvalidParameter, domain.KindOf(err))
	})

	t.Run("negative chamber irradiance", func(t *testing.T) {
		t.Setenv("DEG_CHAMBER_IRRADIANCE", "-2189")
		cfg, err := Load()
		require.NoError(t, err)

		_, err = cfg.DegradationParams()
		assert.Equal(t, domain.KindInvalidParameter, domain.KindOf(err))
	})
}
