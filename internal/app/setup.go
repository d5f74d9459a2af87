// Package app contains the application setup for the marketplace service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/marketplace/internal/config"
	"github.com/abgdnv/marketplace/internal/product/gateway"
	"github.com/abgdnv/marketplace/internal/product/router"
	"github.com/abgdnv/marketplace/internal/product/service"
	"github.com/abgdnv/marketplace/internal/product/store"
	"github.com/abgdnv/marketplace/internal/product/transport/rest"
	"github.com/abgdnv/marketplace/pkg/bootstrap"
	"github.com/abgdnv/marketplace/pkg/messaging"
	natsclient "github.com/abgdnv/marketplace/pkg/nats"
	"github.com/abgdnv/marketplace/pkg/rabbitmq"
	"github.com/abgdnv/marketplace/pkg/server"
	"github.com/abgdnv/marketplace/pkg/telemetry"
	"github.com/go-chi/chi/v5"
)

const meterName = "marketplace"

type Dependencies struct {
	Gateway      *gateway.Gateway
	Metrics      *telemetry.Metrics
	Logger       *slog.Logger
	MaxBodyBytes int64
	Tracing      bool
}

// SetupDependencies wires the service, router and gateway on top of productStore.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, metrics *telemetry.Metrics, logger *slog.Logger) *Dependencies {
	pService := service.NewService(productStore, publisher, logger)
	gw := gateway.New(router.New(pService), logger)

	return &Dependencies{
		Gateway: gw,
		Metrics: metrics,
		Logger:  logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the marketplace service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) (http.Handler, error) {
	mux := server.NewChiRouter(deps.Logger)
	if err := wireRoutes(mux, deps); err != nil {
		return nil, err
	}
	if deps.Tracing {
		return server.WithTracing(mux, "marketplace"), nil
	}
	return mux, nil
}

// wireRoutes sets up the HTTP routes for the marketplace service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) error {
	productHandler, err := rest.NewHandler(deps.Gateway, deps.Metrics.Provider.Meter(meterName), deps.MaxBodyBytes, deps.Logger)
	if err != nil {
		return err
	}
	productHandler.RegisterRoutes(mux, deps.Metrics.Handler())
	return nil
}

// SetupHttpServer creates and configures an HTTP server for the marketplace service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	deps.MaxBodyBytes = cfg.HTTPServer.MaxBodyBytes
	deps.Tracing = cfg.Telemetry.Enabled

	handler, err := SetupHttpHandler(deps)
	if err != nil {
		return nil, err
	}

	return server.NewHTTPServer(cfg.HTTPServer, handler), nil
}

// SetupStore creates the configured product store. The returned cleanup releases
// its resources and is never nil.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.Store.Backend != config.BackendPostgres {
		logger.Info("Using in-memory product store")
		return store.NewMemoryStore(), func() {}, nil
	}

	if cfg.Store.Migrate {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return nil, func() {}, err
		}
		logger.Info("Database migrations applied")
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")

	var productStore store.ProductStore = store.NewPgStore(dbPool)
	if cfg.Resilience.CircuitBreaker.Enabled {
		productStore = store.NewBreakerStore(productStore, cfg.Resilience.CircuitBreaker, logger)
	}
	return productStore, dbPool.Close, nil
}

// SetupPublisher connects to the configured events broker.
func SetupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	switch cfg.Events.Broker {
	case config.BrokerNATS:
		nc, err := natsclient.NewClient(cfg.Events.Nats.URL, cfg.Events.Nats.Timeout)
		if err != nil {
			return nil, func() {}, err
		}
		// closes nc on failure
		js, err := natsclient.NewJetStreamContext(nc)
		if err != nil {
			return nil, func() {}, err
		}
		if err = natsclient.EnsureProductStream(ctx, js, cfg.Events.Nats.Stream); err != nil {
			nc.Close()
			return nil, func() {}, err
		}
		logger.Info("Publishing product events to NATS", "stream", cfg.Events.Nats.Stream)
		return natsclient.NewNatsPublisher(js), nc.Close, nil

	case config.BrokerRabbitMQ:
		publisher, err := rabbitmq.NewPublisher(cfg.Events.RabbitMQ.URL, cfg.Events.RabbitMQ.Exchange)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("Publishing product events to RabbitMQ", "exchange", cfg.Events.RabbitMQ.Exchange)
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close RabbitMQ publisher", "error", err)
			}
		}, nil

	default:
		logger.Info("Product events are disabled")
		return messaging.NopPublisher{}, func() {}, nil
	}
}
