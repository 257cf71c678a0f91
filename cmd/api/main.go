package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/copperkettle/catering/internal/bootstrap"
	"github.com/copperkettle/catering/internal/controller"
	infraRedis "github.com/copperkettle/catering/internal/infrastructure/redis"
	"github.com/copperkettle/catering/internal/repository/postgres"
	"github.com/copperkettle/catering/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "catering-api", "catering")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	productRepo := postgres.NewProductRepository(app.Pool)
	eventRepo := postgres.NewEventRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	guard := postgres.NewGuard(app.Pool, app.Config.Database.Retry.ToPolicy(), app.Logger)

	// --- Services ---
	seenCache := infraRedis.NewSeenEventCache(app.Redis, app.Config.Redis.SeenEventTTL, app.Logger)
	verifier := service.NewSignatureVerifier(app.Config.Square.WebhookSecrets...)
	webhookSvc := service.NewWebhookService(
		verifier, eventRepo, orderRepo, txManager, guard, seenCache, app.Metrics, app.Logger,
	)
	catalogSvc := service.NewCatalogSyncService(productRepo, guard, app.Metrics, app.Logger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:           app.Pool,
		RedisClient:    app.Redis,
		OrderRepo:      orderRepo,
		WebhookService: webhookSvc,
		CatalogService: catalogSvc,
		Metrics:        app.Metrics,
		ServerConfig:   app.Config.Server,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
		}

		app.Logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Server error")
	}
	app.Logger.Info().Msg("Server exited")
}
