package handicap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/handicap-bot/app/eventbus"
	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicaphandlers "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/handlers"
	handicaphttp "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/http"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/parsers"
	handicapqueue "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/queue"
	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	handicaprouter "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/router"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/weather"
	handicaptime "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/time_utils"
	"github.com/Black-And-White-Club/handicap-bot/app/observability"
	handicapmetrics "github.com/Black-And-White-Club/handicap-bot/app/observability/metrics/handicap"
	"github.com/Black-And-White-Club/handicap-bot/config"
	"github.com/Black-And-White-Club/handicap-bot/pkg/cache"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the handicap module.
type Module struct {
	HandicapService handicapservice.Service
	HandicapRouter  *handicaprouter.HandicapRouter
	queue           handicapqueue.QueueService
	cancelFunc      context.CancelFunc
	observability   observability.Observability
}

// NewHandicapModule creates and initializes the handicap module. httpRouter
// may be nil for processes that only consume events.
func NewHandicapModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "handicap.NewHandicapModule initializing")

	metrics, err := handicapmetrics.NewPrometheus(obs.Registry.Prometheus)
	if err != nil {
		return nil, fmt.Errorf("failed to register handicap metrics: %w", err)
	}

	service, err := NewService(cfg, obs, metrics, db)
	if err != nil {
		return nil, err
	}

	var queue handicapqueue.QueueService
	if cfg.Weather.Enabled {
		provider, err := weather.NewClient(
			weather.Config{
				BaseURL:   cfg.Weather.BaseURL,
				Latitude:  cfg.Weather.Latitude,
				Longitude: cfg.Weather.Longitude,
				Timezone:  cfg.Weather.Timezone,
				TeeHour:   cfg.Weather.TeeHour,
				Timeout:   cfg.Weather.Timeout,
			},
			cache.New[string, handicapdomain.Conditions](cfg.Cache.Capacity, cfg.Cache.TTL),
			metrics,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create weather client: %w", err)
		}

		queueService, err := handicapqueue.NewService(ctx, logger, cfg.Postgres.DSN, handicapqueue.Config{
			MaxWorkers:  cfg.Queue.MaxWorkers,
			MaxAttempts: cfg.Queue.MaxAttempts,
			LookupDelay: cfg.Queue.LookupDelay,
		}, metrics, provider, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create conditions queue: %w", err)
		}
		service.SetScheduler(queueService)
		queue = queueService
	}

	handlers := handicaphandlers.NewHandicapHandlers(service, logger, tracer)

	handicapRouter := handicaprouter.NewHandicapRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		metrics,
		obs.Registry.Prometheus,
	)
	if err := handicapRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure handicap router: %w", err)
	}

	if httpRouter != nil {
		loc, err := time.LoadLocation(cfg.Weather.Timezone)
		if err != nil {
			loc = time.UTC
		}
		httpHandlers := handicaphttp.NewHandlers(
			service,
			eventBus,
			parsers.NewFactory(),
			handicaptime.NewDateParser(loc, handicaptime.SystemClock{}),
			logger,
			tracer,
		)
		limiter := handicaphttp.NewClientLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		httpRouter.Route("/api/handicap", func(r chi.Router) {
			r.Use(handicaphttp.RateLimit(limiter))
			httpHandlers.Routes(r)
		})
	}

	return &Module{
		HandicapService: service,
		HandicapRouter:  handicapRouter,
		queue:           queue,
		observability:   obs,
	}, nil
}

// NewService builds the handicap service from configuration without any
// transport. The CLI uses it directly.
func NewService(cfg *config.Config, obs observability.Observability, metrics handicapmetrics.HandicapMetrics, db *bun.DB) (*handicapservice.HandicapService, error) {
	course, err := cfg.CourseConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid course configuration: %w", err)
	}
	tracker, err := cfg.TrackerConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid handicap configuration: %w", err)
	}
	policy, err := cfg.PCCPolicyConfig()
	if err != nil {
		return nil, err
	}

	opts := handicapservice.DefaultOptions()
	opts.Course = course
	opts.Tracker = tracker
	opts.PCCPolicy = policy
	opts.Aliases = cfg.Players.Aliases
	opts.InitialIndexes = cfg.Players.InitialIndexes
	opts.DefaultInitialIndex = cfg.Handicap.DefaultInitialIndex

	return handicapservice.NewHandicapService(
		handicapdb.NewRepository(db),
		obs.Provider.Logger,
		metrics,
		obs.Registry.Tracer,
		db,
		opts,
	), nil
}

// Run starts the conditions queue and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting handicap module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start conditions queue", "error", err)
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Handicap module goroutine stopped")
}

// Close shuts down the handicap module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping handicap module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.queue != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.queue.Stop(stopCtx); err != nil {
			logger.Error("Error stopping conditions queue", "error", err)
		}
	}

	if m.HandicapRouter != nil {
		if err := m.HandicapRouter.Close(); err != nil {
			logger.Error("Error closing HandicapRouter from module", "error", err)
			return fmt.Errorf("error closing HandicapRouter: %w", err)
		}
	}

	logger.Info("Handicap module stopped")
	return nil
}
