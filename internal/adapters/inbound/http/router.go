package http

import (
	"net/http"

	"github.com/architeacher/device-inventory/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/device-inventory/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/device-inventory/internal/config"
	"github.com/architeacher/device-inventory/internal/usecases"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

type RouterConfig struct {
	App            *usecases.Application
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider trace.TracerProvider
	Config         *config.ServiceConfig

	// APIDocs serves the OpenAPI description when set.
	APIDocs *handlers.APIDocsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()

	// Core middlewares - always applied
	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(chimiddleware.Timeout(cfg.Config.HTTPServer.RequestTimeout))
	router.Use(middleware.MaxBodyBytes(cfg.Config.HTTPServer.MaxBodyBytes))
	router.Use(middleware.SecurityHeaders(cfg.Config.App.APIVersion))
	router.Use(middleware.CORS([]string{"*"}))

	if cfg.Config.Telemetry.Traces.Enabled {
		router.Use(middleware.Tracer(cfg.Config.App.ServiceName, cfg.TracerProvider))
		cfg.Logger.Info().Msg("distributed tracing enabled")
	}

	if cfg.Config.Telemetry.Metrics.Enabled {
		metricsMiddleware := middleware.NewMetricsMiddleware(cfg.MetricsClient)
		router.Use(metricsMiddleware.Middleware)
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	// Access logging with health check filtering
	if cfg.Config.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks)
		accessLogger := middleware.NewAccessLogger(cfg.Logger)

		router.Use(healthFilter.Middleware)
		router.Use(accessLogger.Middleware)
		cfg.Logger.Info().
			Bool("log_health_checks", cfg.Config.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	healthHandler := handlers.NewHealthHandler(cfg.App, cfg.Logger)
	router.Get("/health", healthHandler.HealthCheck)
	router.Get("/health/live", healthHandler.LivenessCheck)
	router.Get("/health/ready", healthHandler.ReadinessCheck)

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Handle(cfg.Config.Telemetry.Metrics.Path, cfg.MetricsClient.Handler())
	}

	if cfg.APIDocs != nil {
		router.Get(handlers.APIDocsPath, cfg.APIDocs.JSON)
		router.Get(handlers.APIDocsYAMLPath, cfg.APIDocs.YAML)
	}

	handlers.NewDeviceHandler(cfg.App, cfg.Logger).Routes(router)

	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	return router
}
