package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
postgres:
  dsn: postgres://handicap@localhost:5432/handicap?sslmode=disable
http:
  address: ":9090"
handicap:
  pcc_start: "2026-01-01"
  best_count: {3: 1, 4: 1, 5: 1, 6: 2}
  window: 6
players:
  aliases:
    benny: Ben
  initial_indexes:
    Ben: 12.5
course:
  - id: holes-1-9
    name: Front
    holes: [1, 2, 3, 4, 5, 6, 7, 8, 9]
    par: 35
    rating: 33.5
    slope: 101
    rating_display: 35.0
    slope_display: 127
    hole_pars: [4, 4, 5, 4, 3, 4, 4, 3, 4]
    stroke_index: [15, 1, 5, 10, 16, 7, 13, 4, 11]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NATS_URL", "nats://bus:4222")

	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "nats://bus:4222", cfg.NATS.URL)
	assert.Equal(t, 10, cfg.HTTP.RateBurst, "defaults survive a partial file")
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "Ben", cfg.Players.Aliases["benny"])
	assert.Equal(t, 12.5, cfg.Players.InitialIndexes["Ben"])

	course, err := cfg.CourseConfig()
	require.NoError(t, err)
	require.Len(t, course, 1)
	assert.Equal(t, 127.0, course[handicapdomain.NineHoles1To9].SlopeDisplay)

	tracker, err := cfg.TrackerConfig()
	require.NoError(t, err)
	assert.Equal(t, 6, tracker.Window)
	assert.Equal(t, 2, tracker.Table.Count(6))

	policy, err := cfg.PCCPolicyConfig()
	require.NoError(t, err)
	assert.False(t, policy.Applies(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, policy.Applies(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("TRACE_SAMPLE_RATE", "0.5")
	t.Setenv("WEATHER_ENABLED", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Equal(t, 0.5, cfg.Observability.TraceSampleRate)
	assert.False(t, cfg.Weather.Enabled)

	course, err := cfg.CourseConfig()
	require.NoError(t, err)
	assert.Len(t, course, 2)

	policy, err := cfg.PCCPolicyConfig()
	require.NoError(t, err)
	assert.Equal(t, handicapdomain.DefaultPCCPolicy(), policy)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad sample rate", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("TRACE_SAMPLE_RATE", "lots")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad course", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env")
		cfg, err := LoadConfig(writeConfig(t, "course:\n  - id: holes-1-9\n    hole_pars: [4]\n"))
		require.NoError(t, err)
		_, err = cfg.CourseConfig()
		assert.ErrorIs(t, err, handicapdomain.ErrInvalidCourseData)
	})

	t.Run("bad pcc start", func(t *testing.T) {
		cfg := Default()
		cfg.Handicap.PCCStart = "14/12/2025"
		_, err := cfg.PCCPolicyConfig()
		assert.Error(t, err)
	})
}
