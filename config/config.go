package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/Black-And-White-Club/handicap-bot/app/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Course        []NineConfig        `yaml:"course"`
	Handicap      HandicapConfig      `yaml:"handicap"`
	Weather       WeatherConfig       `yaml:"weather"`
	Queue         QueueConfig         `yaml:"queue"`
	Cache         CacheConfig         `yaml:"cache"`
	Players       PlayersConfig       `yaml:"players"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL        string `yaml:"url"`
	Stream     string `yaml:"stream"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address   string  `yaml:"address"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment     string  `yaml:"environment"`
	LogLevel        string  `yaml:"log_level"`
	LogFormat       string  `yaml:"log_format"` // json|text
	MetricsAddress  string  `yaml:"metrics_address"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// NineConfig describes one nine of the course.
type NineConfig struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Holes         []int   `yaml:"holes"`
	Par           int     `yaml:"par"`
	Rating        float64 `yaml:"rating"`
	Slope         float64 `yaml:"slope"`
	RatingDisplay float64 `yaml:"rating_display"`
	SlopeDisplay  float64 `yaml:"slope_display"`
	HolePars      []int   `yaml:"hole_pars"`
	StrokeIndex   []int   `yaml:"stroke_index"`
}

// HandicapConfig holds the index rules.
type HandicapConfig struct {
	// BestCount maps window size to the number of differentials averaged.
	BestCount           map[int]int `yaml:"best_count"`
	Window              int         `yaml:"window"`
	MinScores           int         `yaml:"min_scores"`
	PCCStart            string      `yaml:"pcc_start"`
	DefaultInitialIndex float64     `yaml:"default_initial_index"`
}

// WeatherConfig holds the Open-Meteo client settings.
type WeatherConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url"`
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
	Timezone  string        `yaml:"timezone"`
	TeeHour   int           `yaml:"tee_hour"`
	Timeout   time.Duration `yaml:"timeout"`
}

// QueueConfig holds the conditions job queue settings.
type QueueConfig struct {
	MaxWorkers  int           `yaml:"max_workers"`
	MaxAttempts int           `yaml:"max_attempts"`
	LookupDelay time.Duration `yaml:"lookup_delay"`
}

// CacheConfig bounds the weather cache.
type CacheConfig struct {
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// PlayersConfig holds name aliases and seed indexes.
type PlayersConfig struct {
	Aliases        map[string]string  `yaml:"aliases"`
	InitialIndexes map[string]float64 `yaml:"initial_indexes"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file does not exist. A .env file in the
// working directory is loaded first.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres dsn not set: add it to %s or set DATABASE_URL", filename)
	}
	return cfg, nil
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080", RateLimit: 5, RateBurst: 10},
		Observability: ObservabilityConfig{
			Environment:     "development",
			LogLevel:        "info",
			TraceSampleRate: 0.1,
		},
		Handicap: HandicapConfig{Window: 20, MinScores: 3},
		Weather: WeatherConfig{
			Enabled:   true,
			BaseURL:   "https://archive-api.open-meteo.com/v1/archive",
			Latitude:  -33.7544,
			Longitude: 151.2677,
			Timezone:  "Australia/Sydney",
			TeeHour:   8,
			Timeout:   5 * time.Second,
		},
		Queue: QueueConfig{MaxWorkers: 4, MaxAttempts: 5, LookupDelay: 2 * time.Hour},
		Cache: CacheConfig{Capacity: 256, TTL: 6 * time.Hour},
	}
}

// --- OVERRIDE WITH ENV VARS IF PRESENT ---
func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		c.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		c.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		c.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Observability.LogFormat = v
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		c.Observability.TraceSampleRate = f
	}
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		c.Weather.Enabled = v == "true"
	}
	if v := os.Getenv("PCC_START"); v != "" {
		c.Handicap.PCCStart = v
	}
	return nil
}

// CourseConfig returns the configured course, or the default course when
// none is configured.
func (c *Config) CourseConfig() (handicapdomain.Course, error) {
	if len(c.Course) == 0 {
		return handicapdomain.DefaultCourse(), nil
	}
	course := make(handicapdomain.Course, len(c.Course))
	for _, n := range c.Course {
		id := handicapdomain.NineID(n.ID)
		if _, dup := course[id]; dup {
			return nil, fmt.Errorf("%w: nine %s configured twice", handicapdomain.ErrInvalidCourseData, id)
		}
		course[id] = handicapdomain.Nine{
			ID:            id,
			Name:          n.Name,
			Holes:         n.Holes,
			Par:           n.Par,
			Rating:        n.Rating,
			Slope:         n.Slope,
			RatingDisplay: n.RatingDisplay,
			SlopeDisplay:  n.SlopeDisplay,
			HolePars:      n.HolePars,
			StrokeIndex:   n.StrokeIndex,
		}
	}
	if err := course.Validate(); err != nil {
		return nil, err
	}
	return course, nil
}

// TrackerConfig returns the index tracker with configured overrides.
func (c *Config) TrackerConfig() (handicapdomain.Tracker, error) {
	t := handicapdomain.DefaultTracker()
	if len(c.Handicap.BestCount) > 0 {
		t.Table = handicapdomain.BestCountTable(c.Handicap.BestCount)
		if err := t.Table.Validate(); err != nil {
			return t, err
		}
	}
	if c.Handicap.Window > 0 {
		t.Window = c.Handicap.Window
	}
	if c.Handicap.MinScores > 0 {
		t.MinScores = c.Handicap.MinScores
	}
	return t, nil
}

// PCCPolicyConfig returns the PCC policy. PCCStart is a YYYY-MM-DD date.
func (c *Config) PCCPolicyConfig() (handicapdomain.PCCPolicy, error) {
	if c.Handicap.PCCStart == "" {
		return handicapdomain.DefaultPCCPolicy(), nil
	}
	start, err := time.Parse(time.DateOnly, c.Handicap.PCCStart)
	if err != nil {
		return handicapdomain.PCCPolicy{}, fmt.Errorf("invalid pcc_start %q: %w", c.Handicap.PCCStart, err)
	}
	return handicapdomain.PCCPolicy{Start: start}, nil
}

// ToObsConfig maps the observability section onto observability.Config.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:     "handicap-bot",
		Environment:     appCfg.Observability.Environment,
		Version:         Version,
		LogLevel:        appCfg.Observability.LogLevel,
		LogFormat:       appCfg.Observability.LogFormat,
		OTLPEndpoint:    appCfg.Observability.OTLPEndpoint,
		OTLPInsecure:    appCfg.Observability.OTLPInsecure,
		TraceSampleRate: appCfg.Observability.TraceSampleRate,
	}
}

// Version is set at build time with -ldflags.
var Version = "dev"
