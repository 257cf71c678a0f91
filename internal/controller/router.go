package controller

import (
	"time"

	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/copperkettle/catering/internal/infrastructure/config"
	"github.com/copperkettle/catering/internal/infrastructure/observability"
	customMW "github.com/copperkettle/catering/internal/middleware"
	"github.com/copperkettle/catering/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool           *pgxpool.Pool
	RedisClient    *redis.Client
	OrderRepo      order.Repository
	WebhookService *service.WebhookService
	CatalogService *service.CatalogSyncService
	Metrics        *observability.Metrics
	ServerConfig   config.ServerConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.ServerConfig.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.ServerConfig.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	webhookH := NewWebhookController(deps.WebhookService)
	orderH := NewOrderController(deps.OrderRepo)
	catalogH := NewCatalogController(deps.CatalogService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	// The provider retries aggressively on 5xx, so the rate limit here
	// protects the database, not the handler.
	r.With(customMW.RateLimit(deps.ServerConfig.RateLimitPerMinute)).
		Post("/webhooks/square", webhookH.Receive)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/orders/{id}", orderH.Get)

		if deps.ServerConfig.AdminJWTSecret != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(customMW.RequireStaff(deps.ServerConfig.AdminJWTSecret))
				r.Post("/products/{squareID}/restore", catalogH.Restore)
			})
		}
	})

	return r
}
