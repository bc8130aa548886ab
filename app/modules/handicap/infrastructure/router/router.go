package handicaprouter

import (
	"context"
	"log/slog"

	handicaphandlers "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/handlers"
	handicapevents "github.com/Black-And-White-Club/handicap-bot/pkg/events/handicap"
	"github.com/Black-And-White-Club/handicap-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// HandicapRouter handles Watermill handler registration for handicap events.
type HandicapRouter struct {
	logger         *slog.Logger
	router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metrics        handlerwrapper.Metrics
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewHandicapRouter creates a new HandicapRouter. Router metrics are only
// registered when a Prometheus registry is supplied.
func NewHandicapRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	handlerMetrics handlerwrapper.Metrics,
	prometheusRegistry *prometheus.Registry,
) *HandicapRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "handicap", "")
		metricsBuilder = &builder
	}

	return &HandicapRouter{
		logger:         logger,
		router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the router with handlers.
func (r *HandicapRouter) Configure(_ context.Context, handlers handicaphandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.router)
	}
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// registerHandlers wires topics to handler methods.
func (r *HandicapRouter) registerHandlers(handlers handicaphandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	r.logger.Info("Registering handicap module handlers",
		slog.String("round_submitted_subject", handicapevents.RoundSubmittedV1),
		slog.String("recalculate_subject", handicapevents.PlayerRecalculateRequestedV1),
	)

	registerHandler(deps, handicapevents.RoundSubmittedV1, handlers.HandleRoundSubmitted)
	registerHandler(deps, handicapevents.PlayerRecalculateRequestedV1, handlers.HandleRecalculateRequested)

	r.logger.Info("Handicap module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Outgoing messages are routed by their topic metadata.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "handicap." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *HandicapRouter) Close() error {
	return r.router.Close()
}
