package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coffeelog/coffee/internal/metrics"
	"github.com/coffeelog/coffee/internal/middleware"
	"github.com/coffeelog/coffee/internal/service"
)

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	Service  *service.CoffeeService
	Logger   *slog.Logger
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer

	// Readiness dependencies; Cache is nil when the key cache is disabled.
	DB    HealthChecker
	Cache HealthChecker

	IsDevelopment      bool
	AllowedOrigins     []string
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxRequestBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	h := New(logger)
	health := NewHealthHandler(cfg.DB, cfg.Cache)
	coffee := NewCoffeeHandler(cfg.Service, logger)
	dashboard := NewDashboardHandler(cfg.Service, logger)
	metricsHandler := NewMetricsHandler(cfg.Gatherer)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(maxBody))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Get("/", dashboard.Index)
	r.Get("/c/{api_key}", dashboard.Coffee)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", coffee.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIKey(middleware.APIKeyConfig{
				Logger:  logger,
				Metrics: cfg.Metrics,
			}))
			r.Post("/coffee", coffee.Add)
			r.Get("/coffee", coffee.List)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
