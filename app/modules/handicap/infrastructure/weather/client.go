// Package weather fetches historical course conditions from Open-Meteo.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	handicapmetrics "github.com/Black-And-White-Club/handicap-bot/app/observability/metrics/handicap"
	"github.com/Black-And-White-Club/handicap-bot/pkg/cache"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrUpstream is returned when the weather service answers with an error.
	ErrUpstream = errors.New("weather service error")
	// ErrNoData is returned when the response has no reading for the hour.
	ErrNoData = errors.New("no weather data for hour")
)

// Provider looks up the conditions a round was played in.
type Provider interface {
	ConditionsAt(ctx context.Context, date time.Time, teeTime *time.Time) (handicapdomain.Conditions, error)
}

// Config locates the course and the archive endpoint.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
	Timezone  string        `yaml:"timezone"`
	TeeHour   int           `yaml:"tee_hour"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DefaultConfig points at Warringah Golf Club with an 8am tee.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://archive-api.open-meteo.com/v1/archive",
		Latitude:  -33.7544,
		Longitude: 151.2677,
		Timezone:  "Australia/Sydney",
		TeeHour:   8,
		Timeout:   5 * time.Second,
	}
}

// Client implements Provider against the Open-Meteo archive API.
type Client struct {
	cfg     Config
	loc     *time.Location
	http    *resty.Client
	cache   cache.Cache[string, handicapdomain.Conditions]
	metrics handicapmetrics.HandicapMetrics
	logger  *slog.Logger
}

// NewClient creates a weather client. cache may be nil.
func NewClient(cfg Config, c cache.Cache[string, handicapdomain.Conditions], metrics handicapmetrics.HandicapMetrics, logger *slog.Logger) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timezone == "" {
		cfg.Timezone = def.Timezone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.TeeHour < 0 || cfg.TeeHour > 23 {
		return nil, fmt.Errorf("tee hour %d out of range", cfg.TeeHour)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	if metrics == nil {
		metrics = handicapmetrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout)
	httpClient.SetRetryCount(2)
	httpClient.SetHeader("Accept", "application/json")

	return &Client{
		cfg:     cfg,
		loc:     loc,
		http:    httpClient,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}, nil
}

type archiveResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		WindSpeed     []float64 `json:"windspeed_10m"`
		Precipitation []float64 `json:"precipitation"`
		WeatherCode   []int     `json:"weathercode"`
	} `json:"hourly"`
}

// localHour returns the course-local hour for a UTC tee time, or the
// configured default.
func (c *Client) localHour(teeTime *time.Time) int {
	if teeTime == nil {
		return c.cfg.TeeHour
	}
	return teeTime.In(c.loc).Hour()
}

// ConditionsAt returns the conditions at the course on date.
func (c *Client) ConditionsAt(ctx context.Context, date time.Time, teeTime *time.Time) (handicapdomain.Conditions, error) {
	day := date.Format(time.DateOnly)
	hour := c.localHour(teeTime)
	if teeTime != nil {
		// A late UTC tee time can fall on the next local day.
		day = teeTime.In(c.loc).Format(time.DateOnly)
	}

	key := cache.Fingerprint(c.cfg.Latitude, c.cfg.Longitude, day, hour)
	if c.cache != nil {
		if cond, ok := c.cache.Get(key); ok {
			c.metrics.RecordWeatherLookup(ctx, true, nil)
			return cond, nil
		}
	}

	cond, err := c.fetch(ctx, day, hour)
	c.metrics.RecordWeatherLookup(ctx, false, err)
	if err != nil {
		c.logger.WarnContext(ctx, "Weather lookup failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("date", day),
			attr.Int("hour", hour),
			attr.Error(err),
		)
		return handicapdomain.Conditions{}, err
	}
	if c.cache != nil {
		c.cache.Add(key, cond)
	}
	return cond, nil
}

func (c *Client) fetch(ctx context.Context, day string, hour int) (handicapdomain.Conditions, error) {
	var out archiveResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":   fmt.Sprintf("%.4f", c.cfg.Latitude),
			"longitude":  fmt.Sprintf("%.4f", c.cfg.Longitude),
			"start_date": day,
			"end_date":   day,
			"hourly":     "temperature_2m,windspeed_10m,precipitation,weathercode",
			"timezone":   c.cfg.Timezone,
		}).
		SetResult(&out).
		Get(c.cfg.BaseURL)
	if err != nil {
		return handicapdomain.Conditions{}, fmt.Errorf("failed to query weather: %w", err)
	}
	if resp.IsError() {
		return handicapdomain.Conditions{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}

	h := out.Hourly
	if hour >= len(h.Temperature) || hour >= len(h.WindSpeed) || hour >= len(h.Precipitation) {
		return handicapdomain.Conditions{}, fmt.Errorf("%w: %s %02d:00", ErrNoData, day, hour)
	}
	code := -1
	if hour < len(h.WeatherCode) {
		code = h.WeatherCode[hour]
	}

	cond := handicapdomain.Conditions{
		TempC:   h.Temperature[hour],
		WindKmh: h.WindSpeed[hour],
		RainMm:  h.Precipitation[hour],
	}
	cond.Description = describe(cond, code)
	return cond, nil
}

var weatherCodes = map[int]string{
	0: "clear skies", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "foggy", 48: "foggy",
	51: "light drizzle", 53: "drizzle", 55: "heavy drizzle",
	61: "light rain", 63: "rain", 65: "heavy rain",
	71: "light snow", 73: "snow", 75: "heavy snow",
	80: "rain showers", 81: "showers", 82: "heavy showers",
	95: "thunderstorm", 96: "thunderstorm with hail", 99: "severe thunderstorm",
}

// describe renders conditions the way they are shown to players,
// e.g. "22°C, light rain, 15km/h winds, 3.2mm rain".
func describe(c handicapdomain.Conditions, code int) string {
	sky, ok := weatherCodes[code]
	if !ok {
		sky = "mixed conditions"
	}
	parts := []string{
		fmt.Sprintf("%.0f°C", math.Round(c.TempC)),
		sky,
		fmt.Sprintf("%.0fkm/h winds", math.Round(c.WindKmh)),
	}
	if c.RainMm > 0 {
		parts = append(parts, fmt.Sprintf("%.1fmm rain", c.RainMm))
	}
	return strings.Join(parts, ", ")
}
