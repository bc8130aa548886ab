package handicapmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "RecordRound", "HandicapService")
	m.RecordOperationDuration(ctx, "RecordRound", "HandicapService", 20*time.Millisecond)
	m.RecordRoundRecorded(ctx, "holes-1-9", 4)
	m.RecordIndexCapped(ctx, "soft")
	m.RecordWeatherLookup(ctx, true, nil)
	m.RecordWeatherLookup(ctx, false, errors.New("timeout"))
	m.RecordHandlerAttempt(ctx, "handicap.round.submitted")
	m.RecordHandlerFailure(ctx, "handicap.round.submitted")

	pm := m.(*prometheusMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.attempts.WithLabelValues("RecordRound", "HandicapService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.rounds.WithLabelValues("holes-1-9")))
	assert.Equal(t, 4.0, testutil.ToFloat64(pm.scores.WithLabelValues("holes-1-9")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.caps.WithLabelValues("soft")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.weather.WithLabelValues("cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.weather.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.handlers.WithLabelValues("handicap.round.submitted", "failure")))
	assert.Zero(t, testutil.ToFloat64(pm.handlers.WithLabelValues("handicap.round.submitted", "success")))

	_, err = NewPrometheus(reg)
	assert.Error(t, err, "registering twice should fail")
}
