package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	httpadapter "github.com/couchcryptid/pv-climate-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pv-climate-etl/internal/adapter/kafka"
	"github.com/couchcryptid/pv-climate-etl/internal/adapter/parquet"
	"github.com/couchcryptid/pv-climate-etl/internal/aggregate"
	"github.com/couchcryptid/pv-climate-etl/internal/catalog"
	"github.com/couchcryptid/pv-climate-etl/internal/config"
	"github.com/couchcryptid/pv-climate-etl/internal/ingest"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
	"github.com/couchcryptid/pv-climate-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := ingest.NewDirSource(cfg.DataDir, logger)
	progress := catalog.WithObserver(catalog.LogObserver{Logger: logger})
	agg := aggregate.New(aggregate.Options{ReversalTempC: cfg.ReversalTempC})

	stages := pipeline.Stages{
		Summaries: catalog.NewBuilder(source, agg, cfg.WorkerCount, logger, metrics, progress),
		Store:     parquet.NewStore(logger),
	}

	if cfg.DegradationEnabled {
		params, err := cfg.DegradationParams()
		if err != nil {
			logger.Error("invalid degradation settings", "error", err)
			os.Exit(1)
		}
		deg, err := catalog.NewDegradationBuilder(source, params, cfg.WorkerCount, logger, metrics, progress)
		if err != nil {
			logger.Error("failed to create degradation builder", "error", err)
			os.Exit(1)
		}
		stages.Degradation = deg
		logger.Info("van't hoff catalog enabled", "fixture", params.Fixture, "temperature", params.Temperature)
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		stages.Publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(stages, pipeline.OptionsFromConfig(cfg), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Build or load the catalog. The server keeps answering queries afterwards.
	var exitCode atomic.Int32
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			if !p.Ready() {
				exitCode.Store(1)
				stop()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if code := exitCode.Load(); code != 0 {
		cancel()
		os.Exit(int(code))
	}
}
