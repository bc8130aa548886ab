// Package app assembles the handicap bot process.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Black-And-White-Club/handicap-bot/app/eventbus"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap"
	"github.com/Black-And-White-Club/handicap-bot/app/observability"
	"github.com/Black-And-White-Club/handicap-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the long-lived process components.
type App struct {
	Config         *config.Config
	Observability  observability.Observability
	DB             *bun.DB
	EventBus       eventbus.EventBus
	Router         *message.Router
	HTTPRouter     chi.Router
	HandicapModule *handicap.Module

	httpServer    *http.Server
	metricsServer *http.Server
}

// OpenDB opens a bun database on the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// NewApp initializes the application with the necessary services and configuration.
// routerCtx bounds the Watermill handlers.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability, routerCtx context.Context) (*App, error) {
	logger := obs.Provider.Logger

	db := OpenDB(cfg.Postgres.DSN)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	busCfg := eventbus.DefaultConfig()
	busCfg.URL = cfg.NATS.URL
	if cfg.NATS.Stream != "" {
		busCfg.Stream = cfg.NATS.Stream
	}
	if cfg.NATS.QueueGroup != "" {
		busCfg.QueueGroup = cfg.NATS.QueueGroup
	}
	bus, err := eventbus.NewEventBus(ctx, busCfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := NewMessageRouter(logger, bus)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, err
	}

	httpRouter := NewHTTPRouter(obs)

	module, err := handicap.NewHandicapModule(ctx, cfg, obs, bus, router, httpRouter, routerCtx, db)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize handicap module: %w", err)
	}

	return &App{
		Config:         cfg,
		Observability:  obs,
		DB:             db,
		EventBus:       bus,
		Router:         router,
		HTTPRouter:     httpRouter,
		HandicapModule: module,
	}, nil
}

// Close releases everything NewApp opened.
func (a *App) Close(ctx context.Context) error {
	logger := a.Observability.Provider.Logger
	var errs []error

	for _, srv := range []*http.Server{a.httpServer, a.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown %s: %w", srv.Addr, err))
		}
	}
	if a.HandicapModule != nil {
		if err := a.HandicapModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.EventBus != nil {
		if err := a.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Application shut down with errors", "error", err)
	} else {
		logger.Info("Application shut down gracefully")
	}
	return err
}
