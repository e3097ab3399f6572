package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/star3ai/social-auth-service/internal/config"
	"github.com/star3ai/social-auth-service/internal/repository"
	"github.com/star3ai/social-auth-service/pkg/database"
	"github.com/star3ai/social-auth-service/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "social-auth-service"

type Infrastructure interface {
	Store() repository.AccountStore
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	store          repository.AccountStore
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure builds process-wide collaborators. The account store
// backend is selected here, once, from configuration.
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		postgres, err := database.NewPostgres(cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		i.postgres = postgres

		if err := database.Migrate(cfg.Store.MigrationsURL, cfg.Postgres.URL()); err != nil {
			_ = i.postgres.Close()
			return nil, fmt.Errorf("failed to migrate account store: %w", err)
		}

		i.store = repository.NewPostgresStore(postgres)
	case config.StoreBackendMemory:
		i.store = repository.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		if i.postgres != nil {
			_ = i.postgres.Close()
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		if i.postgres != nil {
			_ = i.postgres.Close()
		}
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) Store() repository.AccountStore {
	return i.store
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() {
		if i.postgres != nil {
			errs <- i.postgres.Close()
			return
		}
		errs <- nil
	}()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs, <-errs)
}
