package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/surf-prediction-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/surf-prediction-service/internal/adapter/kafka"
	"github.com/couchcryptid/surf-prediction-service/internal/adapter/readingcache"
	"github.com/couchcryptid/surf-prediction-service/internal/adapter/sqlite"
	"github.com/couchcryptid/surf-prediction-service/internal/config"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
	"github.com/couchcryptid/surf-prediction-service/internal/pipeline"
	"github.com/couchcryptid/surf-prediction-service/internal/prediction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	logger.Info("database opened", "path", cfg.DatabasePath)

	readings := readingcache.New(store, cfg.ReadingCacheSize, metrics)
	service := prediction.NewService(store, readings, cfg.PredictionLocation, cfg.PredictionConcurrency, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(reader, pipeline.NewTransformer(), store, logger, metrics, cfg.BatchSize)
	scheduler := prediction.NewScheduler(store, service, writer, cfg.PredictionInterval, nil, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, service, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)

	// Start reading ingestion.
	go func() {
		defer wg.Done()
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	// Start prediction scheduler.
	go func() {
		defer wg.Done()
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
