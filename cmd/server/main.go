package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"log/slog"

	"github.com/LOCALPULSE/localpulse/internal/aggregate"
	"github.com/LOCALPULSE/localpulse/internal/api"
	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/database"
	"github.com/LOCALPULSE/localpulse/internal/inference"
	"github.com/LOCALPULSE/localpulse/internal/logging"
	"github.com/LOCALPULSE/localpulse/internal/metrics"
	"github.com/LOCALPULSE/localpulse/internal/routing"
	"github.com/LOCALPULSE/localpulse/internal/server"
	"github.com/LOCALPULSE/localpulse/internal/sources"
)

func main() {
	// Local dev convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting localpulse")

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	// Inference log persistence is optional: without DATABASE_URL calls are
	// recorded in the structured log only.
	var inferenceRepo inference.Repository
	if cfg.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL

		db, err := database.Connect(context.Background(), dbCfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := database.NewInferenceLogRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Error("failed to prepare inference log schema", "error", err)
			os.Exit(1)
		}
		inferenceRepo = repo
		logger.Info("inference log persistence enabled")
	} else {
		logger.Info("DATABASE_URL not set, inference logs go to structured log only")
	}
	inferenceLogger := inference.NewLogger(inferenceRepo, logger)

	// Adapter order is the source-priority order for dedup ties.
	var adapters []sources.Adapter
	if cfg.Adapters.Ticketing.Enabled {
		adapters = append(adapters, sources.NewTicketingAdapter(cfg.Adapters.Ticketing, logger))
	}
	if cfg.Adapters.Sports.Enabled {
		adapters = append(adapters, sources.NewSportsAdapter(cfg.Adapters.Sports, logger))
	}
	if cfg.Adapters.Curated.Enabled {
		adapters = append(adapters, sources.NewCuratedAdapter(cfg.Adapters.Curated, logger))
	}
	if cfg.Adapters.Webscrape.Enabled {
		adapters = append(adapters, sources.NewWebscrapeAdapter(cfg.Adapters.Webscrape, logger))
	}
	logger.Info("source adapters configured", "count", len(adapters))

	// All adapters share one fetch timeout (ADAPTER_TIMEOUT_SECONDS).
	orchestrator := aggregate.NewOrchestrator(adapters, cfg.Aggregation, cfg.Adapters.Ticketing.Timeout, logger, collector)

	router := routing.NewRouter(cfg.Providers, logger, inferenceLogger, collector)
	logger.Info("providers configured",
		"reasoning", cfg.Providers.Reasoning.Available(),
		"search_grounded", cfg.Providers.SearchGrounded.Available())

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	api.SetupRoutes(mux, api.NewHandler(orchestrator, router, logger))

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("localpulse started")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
