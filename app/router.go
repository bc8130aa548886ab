package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/handicap-bot/app/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PoisonTopic receives messages that still fail after every retry.
const PoisonTopic = "handicap.poison.v1"

// NewMessageRouter builds the Watermill router with correlation, poison
// queue, retry and panic recovery middleware.
func NewMessageRouter(logger *slog.Logger, publisher message.Publisher) (*message.Router, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}

	poisonQueue, err := middleware.PoisonQueue(publisher, PoisonTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create poison queue middleware: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		poisonQueue,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			Logger:          watermillLogger,
		}.Middleware,
		middleware.Recoverer,
	)
	return router, nil
}

// NewHTTPRouter builds the chi router with health and metrics endpoints.
// Modules mount their own routes on it.
func NewHTTPRouter(obs observability.Observability) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metricsHandler(obs))
	return r
}

func metricsHandler(obs observability.Observability) http.Handler {
	return promhttp.HandlerFor(obs.Registry.Prometheus, promhttp.HandlerOpts{})
}
