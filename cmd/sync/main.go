package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/copperkettle/catering/internal/infrastructure/config"
	"github.com/copperkettle/catering/internal/infrastructure/observability"
	"github.com/copperkettle/catering/internal/infrastructure/square"
	"github.com/copperkettle/catering/internal/repository/postgres"
	"github.com/copperkettle/catering/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

// The sync binary reconciles local products against the live Square
// catalog. It is meant for cron or manual operator runs; the safety gate
// refuses to touch anything until every check passes.
func main() {
	var confirm string
	flag.StringVar(&confirm, "confirm", "", "Confirmation token required to mutate the catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	metrics := observability.NewMetrics("catering_sync", prometheus.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Fetch the live catalog before opening the database: a provider
	// outage must never produce local writes.
	squareClient := square.NewClient(cfg.Square, logger)
	liveIDs, err := squareClient.ListCatalogItemIDs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch provider catalog")
		metrics.SyncRunsTotal.WithLabelValues("fetch_failed").Inc()
		os.Exit(1)
	}
	logger.Info().Int("live_items", len(liveIDs)).Msg("Fetched provider catalog")

	gate := service.CheckSyncSafety(service.GateInput{
		ConfirmationToken: confirm,
		TargetDescriptor:  cfg.Database.Descriptor(),
		SourceItemCount:   len(liveIDs),
	}, cfg.Sync)
	if !gate.Passed {
		logger.Error().Str("reason", gate.Reason).Msg("Safety gate blocked the run, nothing was written")
		metrics.SyncRunsTotal.WithLabelValues("blocked").Inc()
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	guard := postgres.NewGuard(pool, cfg.Database.Retry.ToPolicy(), logger)
	syncSvc := service.NewCatalogSyncService(productRepo, guard, metrics, logger)

	liveSet := make(map[string]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		liveSet[id] = struct{}{}
	}

	result, err := syncSvc.Reconcile(ctx, liveSet)
	if err != nil {
		logger.Error().Err(err).Msg("Reconciliation failed")
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		os.Exit(1)
	}

	outcome := "success"
	if result.Errors > 0 {
		outcome = "partial"
	}
	metrics.SyncRunsTotal.WithLabelValues(outcome).Inc()

	logger.Info().
		Str("target", cfg.Database.Descriptor()).
		Strs("archived", result.Archived).
		Strs("restored", result.Restored).
		Int("errors", result.Errors).
		Msg("Catalog sync finished")

	if result.Errors > 0 {
		os.Exit(2)
	}
}
