package handicapqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/weather"
	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Metrics is the subset of the handicap metrics the queue records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// Config tunes the conditions queue.
type Config struct {
	MaxWorkers  int           `yaml:"max_workers"`
	MaxAttempts int           `yaml:"max_attempts"`
	LookupDelay time.Duration `yaml:"lookup_delay"`
}

// QueueService interface defines the contract for job scheduling operations
type QueueService interface {
	handicapservice.ConditionsScheduler
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Service schedules conditions lookups using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics Metrics
	cfg     Config
}

// NewService creates a River client on its own pgx pool and registers the
// conditions worker.
func NewService(ctx context.Context, logger *slog.Logger, dsn string, cfg Config, metrics Metrics, provider weather.Provider, applier ConditionsApplier) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_handicap_queue_service"),
		attr.String("component", "river_queue"),
	)
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewConditionsLookupWorker(ctxLogger, provider, applier))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			conditionsQueue: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.Info("Handicap queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
		cfg:     cfg,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Handicap queue service started")
	return nil
}

// Stop stops the River queue service and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Handicap queue service stopped")
	return nil
}

// ScheduleConditionsLookup queues a weather lookup for a round. Lookups for
// the same round are deduplicated.
func (s *Service) ScheduleConditionsLookup(ctx context.Context, roundID uuid.UUID, roundKey string, teeTime *time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_conditions_lookup", "river")

	ctxLogger := s.logger.With(
		attr.RoundKey(roundKey),
		attr.String("round_id", roundID.String()),
	)

	job := ConditionsLookupJob{RoundID: roundID.String(), RoundKey: roundKey, TeeTime: teeTime}
	opts := &river.InsertOpts{
		Queue:       conditionsQueue,
		MaxAttempts: s.cfg.MaxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
	if s.cfg.LookupDelay > 0 {
		opts.ScheduledAt = time.Now().Add(s.cfg.LookupDelay)
	}

	res, err := s.client.Insert(ctx, job, opts)
	if err != nil {
		ctxLogger.ErrorContext(ctx, "Failed to schedule conditions lookup", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_conditions_lookup", "river")
		return fmt.Errorf("failed to schedule conditions lookup: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_conditions_lookup", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_conditions_lookup", "river", time.Since(start))
	ctxLogger.InfoContext(ctx, "Conditions lookup scheduled",
		attr.Any("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// HealthCheck verifies the queue's database connection.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
