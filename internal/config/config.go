package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// Catalog modes.
const (
	CatalogModeBuild = "build"
	CatalogModeLoad  = "load"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	CatalogMode     string
	CatalogPath     string
	DegradationPath string
	WorkerCount     int
	ReversalTempC   float64

	// Van't Hoff degradation catalog parameters.
	DegradationEnabled   bool
	DegFitExponent       float64
	DegChamberIrradiance float64
	DegTempMultiplier    float64
	DegReferenceTempC    float64
	DegFixture           string
	DegTemperature       string

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RankCacheSize   int
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first when present; it never
// overrides variables already set in the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	workerCount, err := parsePositiveInt("WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	rankCacheSize, err := parsePositiveInt("RANK_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "./data/sites"),
		CatalogMode:     sharedcfg.EnvOrDefault("CATALOG_MODE", CatalogModeBuild),
		CatalogPath:     sharedcfg.EnvOrDefault("CATALOG_PATH", "./data/catalog/summary.parquet"),
		DegradationPath: sharedcfg.EnvOrDefault("DEGRADATION_PATH", "./data/catalog/vant_hoff.parquet"),
		WorkerCount:     workerCount,

		DegFixture:     sharedcfg.EnvOrDefault("DEG_FIXTURE", "open_rack_glass"),
		DegTemperature: sharedcfg.EnvOrDefault("DEG_TEMPERATURE", "module"),

		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "pv-site-summaries"),
		BatchSize:      batchSize,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RankCacheSize:   rankCacheSize,
	}

	floats := []struct {
		key string
		def float64
		dst *float64
	}{
		{"REVERSAL_TEMP_C", 54.8, &cfg.ReversalTempC},
		{"DEG_FIT_EXPONENT", 0.64, &cfg.DegFitExponent},
		{"DEG_CHAMBER_IRRADIANCE", 2189, &cfg.DegChamberIrradiance},
		{"DEG_TEMP_MULTIPLIER", 1.41, &cfg.DegTempMultiplier},
		{"DEG_REFERENCE_TEMP_C", 60, &cfg.DegReferenceTempC},
	}
	for _, f := range floats {
		v, err := parseFloat(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if cfg.DegradationEnabled, err = parseBool("DEGRADATION_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}

	if cfg.CatalogMode != CatalogModeBuild && cfg.CatalogMode != CatalogModeLoad {
		return nil, fmt.Errorf("invalid CATALOG_MODE %q: want %s or %s", cfg.CatalogMode, CatalogModeBuild, CatalogModeLoad)
	}
	if cfg.CatalogMode == CatalogModeBuild && cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required when CATALOG_MODE is build")
	}
	if cfg.CatalogPath == "" {
		return nil, errors.New("CATALOG_PATH is required")
	}
	if cfg.DegradationEnabled && cfg.DegradationPath == "" {
		return nil, errors.New("DEGRADATION_PATH is required when DEGRADATION_ENABLED is true")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", key, s)
	}
	return v, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", key, s)
	}
	return v, nil
}

// DegradationParams converts the DEG_* settings into validated Van't Hoff parameters.
func (c *Config) DegradationParams() (domain.DegradationParams, error) {
	fixture, err := domain.ParseFixtureType(c.DegFixture)
	if err != nil {
		return domain.DegradationParams{}, fmt.Errorf("DEG_FIXTURE: %w", err)
	}
	p := domain.DegradationParams{
		FitExponent:       c.DegFitExponent,
		ChamberIrradiance: c.DegChamberIrradiance,
		TempMultiplier:    c.DegTempMultiplier,
		ReferenceTempC:    c.DegReferenceTempC,
		Fixture:           fixture,
		Temperature:       domain.TemperatureKind(c.DegTemperature),
	}
	if err := p.Validate(); err != nil {
		return domain.DegradationParams{}, fmt.Errorf("degradation parameters: %w", err)
	}
	return p, nil
}
