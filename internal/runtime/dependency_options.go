package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	inboundgrpc "github.com/architeacher/device-inventory/internal/adapters/inbound/grpc"
	inboundhttp "github.com/architeacher/device-inventory/internal/adapters/inbound/http"
	"github.com/architeacher/device-inventory/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/device-inventory/internal/adapters/repos"
	"github.com/architeacher/device-inventory/internal/config"
	infraPostgres "github.com/architeacher/device-inventory/internal/infrastructure/postgres"
	"github.com/architeacher/device-inventory/internal/infrastructure/telemetry"
	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/internal/services"
	"github.com/architeacher/device-inventory/internal/usecases"
	"github.com/architeacher/device-inventory/pkg/circuitbreaker"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/hashicorp/vault/api"
)

const storageBreakerName = "devices-storage"

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithSecrets(ctx),
		WithTelemetryResource(ctx),
		WithTracing(ctx),
		WithMetrics(),
		WithDatabase(ctx),
		WithDevicesRepository(),
		WithDevicesService(),
		WithApplication(),
		WithHTTPServer(),
		WithGRPCHealthServer(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		base := logger.New(d.config.Logging.Level, d.config.Logging.Format)

		d.infra.logger = logger.Logger{
			Logger: base.With().
				Str("service", d.config.App.ServiceName).
				Str("version", d.config.App.ServiceVersion).
				Logger(),
		}

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

// WithSecrets overlays database credentials from Vault before any
// connection is opened.
func WithSecrets(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		version, err := config.NewLoader(d.config, d.repos.secretsRepo).Load(ctx)
		if err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.infra.logger.Info().
			Uint("secret_version", version).
			Msg("secrets loaded from Vault")

		return nil
	}
}

func WithTelemetryResource(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		res, err := telemetry.NewResource(ctx, d.config.App)
		if err != nil {
			return fmt.Errorf("describing telemetry resource: %w", err)
		}

		d.infra.resource = res

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Traces.Enabled {
			d.infra.tracerProvider = telemetry.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := telemetry.NewTracerProvider(ctx, d.infra.resource, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.cleanupFuncs["tracer"] = shutdown

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		d.infra.metricsClient = telemetry.NewMetricsClient(d.infra.resource, d.config.Telemetry.Metrics)
		d.cleanupFuncs["metrics"] = d.infra.metricsClient.Shutdown

		return nil
	}
}

func WithDatabase(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.UsesPostgres() {
			return nil
		}

		pool, err := infraPostgres.NewPool(ctx, d.config.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		d.infra.dbPool = pool
		d.cleanupFuncs["database"] = func(context.Context) error {
			pool.Close()

			return nil
		}

		if !d.config.Database.RunMigrations {
			return nil
		}

		if err := infraPostgres.NewMigrator(pool, d.infra.logger).Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		return nil
	}
}

func WithDevicesRepository() DependencyOption {
	return func(d *dependencies) error {
		var base ports.DeviceRepository

		if d.config.UsesPostgres() {
			base = repos.NewDevicesRepository(
				d.infra.dbPool,
				repos.NewPgxScanner(),
				repos.NewCriteriaTranslator(),
				d.infra.logger,
			)
		} else {
			base = repos.NewMemoryRepository()
			d.infra.logger.Warn().Msg("using in-memory storage, data is lost on restart")
		}

		cbConfig := d.config.CircuitBreaker
		breaking := repos.NewBreakingRepository(base, circuitbreaker.Config{
			Name:             storageBreakerName,
			Enabled:          cbConfig.Enabled,
			MaxRequests:      cbConfig.MaxRequests,
			Interval:         cbConfig.Interval,
			Timeout:          cbConfig.Timeout,
			FailureThreshold: cbConfig.FailureThreshold,
			OnStateChange: func(name, from, to string) {
				d.infra.logger.Warn().
					Str("breaker", name).
					Str("from", from).
					Str("to", to).
					Msg("storage circuit breaker changed state")
			},
		})

		if cbConfig.Enabled {
			d.infra.logger.Info().
				Str("breaker", breaking.Name()).
				Str("state", breaking.State()).
				Uint("failure_threshold", cbConfig.FailureThreshold).
				Msg("storage circuit breaker armed")
		}

		d.repos.dbHealthChecker = base
		d.repos.deviceRepo = breaking

		return nil
	}
}

func WithDevicesService() DependencyOption {
	return func(d *dependencies) error {
		d.devicesService = services.NewDevicesService(d.repos.deviceRepo)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.app = usecases.NewApplication(
			d.devicesService,
			d.repos.dbHealthChecker,
			d.config.Storage.Driver,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		apiDoc, err := handlers.LoadOpenAPI()
		if err != nil {
			return err
		}

		apiDocs, err := handlers.NewAPIDocsHandler(apiDoc)
		if err != nil {
			return err
		}

		router := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.app,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			Config:         d.config,
			APIDocs:        apiDocs,
		})

		d.infra.httpServer = &http.Server{
			Handler:           router,
			ReadTimeout:       d.config.HTTPServer.ReadTimeout,
			ReadHeaderTimeout: d.config.HTTPServer.ReadHeaderTimeout,
			WriteTimeout:      d.config.HTTPServer.WriteTimeout,
			IdleTimeout:       d.config.HTTPServer.IdleTimeout,
		}

		return nil
	}
}

func WithGRPCHealthServer() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.HealthServer.Enabled {
			return nil
		}

		d.infra.healthHandler = inboundgrpc.NewHealthHandler(
			d.repos.dbHealthChecker,
			d.config.App.ServiceName,
			d.infra.logger,
		)

		d.infra.grpcServer = inboundgrpc.NewServer(inboundgrpc.ServerConfig{
			Health:         d.infra.healthHandler,
			Logger:         d.infra.logger,
			TracerProvider: d.infra.tracerProvider,
			Config:         d.config,
		})

		return nil
	}
}
