// Package handicapmetrics defines the handicap module's metrics.
package handicapmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HandicapMetrics records service and domain level measurements.
type HandicapMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordRoundRecorded(ctx context.Context, nine string, players int)
	RecordIndexCapped(ctx context.Context, capKind string)
	RecordDifferential(ctx context.Context, nine string, differential float64)
	RecordWeatherLookup(ctx context.Context, cached bool, err error)

	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, d time.Duration)
}

type prometheusMetrics struct {
	attempts     *prometheus.CounterVec
	successes    *prometheus.CounterVec
	failures     *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	rounds       *prometheus.CounterVec
	scores       *prometheus.CounterVec
	caps         *prometheus.CounterVec
	differential *prometheus.HistogramVec
	weather      *prometheus.CounterVec
	handlers     *prometheus.CounterVec
	handlerTime  *prometheus.HistogramVec
}

// NewPrometheus registers the handicap metrics on reg.
func NewPrometheus(reg prometheus.Registerer) (HandicapMetrics, error) {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "operation_success_total",
			Help: "Service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "operation_failures_total",
			Help: "Service operations that failed or panicked.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "handicap", Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "rounds_recorded_total",
			Help: "Nines recorded, by nine.",
		}, []string{"nine"}),
		scores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "scores_recorded_total",
			Help: "Player scores recorded, by nine.",
		}, []string{"nine"}),
		caps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "index_caps_total",
			Help: "Index computations limited by a soft or hard cap.",
		}, []string{"cap"}),
		differential: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "handicap", Name: "score_differential",
			Help:    "Distribution of recorded score differentials.",
			Buckets: prometheus.LinearBuckets(-5, 5, 12),
		}, []string{"nine"}),
		weather: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "weather_lookups_total",
			Help: "Weather lookups, by outcome.",
		}, []string{"outcome"}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handicap", Name: "handler_messages_total",
			Help: "Event handler invocations, by handler and outcome.",
		}, []string{"handler", "outcome"}),
		handlerTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "handicap", Name: "handler_duration_seconds",
			Help:    "Event handler latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	for _, c := range []prometheus.Collector{
		m.attempts, m.successes, m.failures, m.durations,
		m.rounds, m.scores, m.caps, m.differential, m.weather,
		m.handlers, m.handlerTime,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordRoundRecorded(_ context.Context, nine string, players int) {
	m.rounds.WithLabelValues(nine).Inc()
	m.scores.WithLabelValues(nine).Add(float64(players))
}

func (m *prometheusMetrics) RecordIndexCapped(_ context.Context, capKind string) {
	m.caps.WithLabelValues(capKind).Inc()
}

func (m *prometheusMetrics) RecordDifferential(_ context.Context, nine string, differential float64) {
	m.differential.WithLabelValues(nine).Observe(differential)
}

func (m *prometheusMetrics) RecordWeatherLookup(_ context.Context, cached bool, err error) {
	outcome := "fetched"
	switch {
	case err != nil:
		outcome = "error"
	case cached:
		outcome = "cached"
	}
	m.weather.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "attempt").Inc()
}

func (m *prometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "success").Inc()
}

func (m *prometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "failure").Inc()
}

func (m *prometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, d time.Duration) {
	m.handlerTime.WithLabelValues(handlerName).Observe(d.Seconds())
}

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() HandicapMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordRoundRecorded(context.Context, string, int)                       {}
func (noop) RecordIndexCapped(context.Context, string)                              {}
func (noop) RecordDifferential(context.Context, string, float64)                    {}
func (noop) RecordWeatherLookup(context.Context, bool, error)                       {}
func (noop) RecordHandlerAttempt(context.Context, string)                           {}
func (noop) RecordHandlerSuccess(context.Context, string)                           {}
func (noop) RecordHandlerFailure(context.Context, string)                           {}
func (noop) RecordHandlerDuration(context.Context, string, time.Duration)           {}
