package handicapservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	handicapmetrics "github.com/Black-And-White-Club/handicap-bot/app/observability/metrics/handicap"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "HandicapService"

// Options carries the course and rules the service scores against.
type Options struct {
	Course    handicapdomain.Course
	Tracker   handicapdomain.Tracker
	PCCPolicy handicapdomain.PCCPolicy
	// Aliases maps alternative spellings to a canonical player name.
	Aliases map[string]string
	// InitialIndexes seeds new players. Others start at DefaultInitialIndex.
	InitialIndexes      map[string]float64
	DefaultInitialIndex float64
	Scheduler           ConditionsScheduler
	Palette             ChartPalette
}

// DefaultOptions scores against the default course and tracker.
func DefaultOptions() Options {
	return Options{
		Course:    handicapdomain.DefaultCourse(),
		Tracker:   handicapdomain.DefaultTracker(),
		PCCPolicy: handicapdomain.DefaultPCCPolicy(),
		Palette:   DefaultPalette(),
	}
}

// HandicapService implements the Service interface.
type HandicapService struct {
	repo    handicapdb.Repository
	logger  *slog.Logger
	metrics handicapmetrics.HandicapMetrics
	tracer  trace.Tracer
	db      *bun.DB
	opts    Options
}

// NewHandicapService creates a new HandicapService.
func NewHandicapService(
	repo handicapdb.Repository,
	logger *slog.Logger,
	metrics handicapmetrics.HandicapMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *HandicapService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = handicapmetrics.NewNoop()
	}
	if opts.Course == nil {
		opts.Course = handicapdomain.DefaultCourse()
	}
	if opts.Tracker.Table == nil {
		opts.Tracker = handicapdomain.DefaultTracker()
	}
	if opts.Palette == (ChartPalette{}) {
		opts.Palette = DefaultPalette()
	}
	if len(opts.Aliases) > 0 {
		aliases := make(map[string]string, len(opts.Aliases))
		for alias, canonical := range opts.Aliases {
			aliases[strings.ToLower(strings.TrimSpace(alias))] = canonical
		}
		opts.Aliases = aliases
	}
	return &HandicapService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		opts:    opts,
	}
}

// SetScheduler attaches the conditions scheduler once the job queue exists.
func (s *HandicapService) SetScheduler(scheduler ConditionsScheduler) {
	s.opts.Scheduler = scheduler
}

// CanonicalName resolves aliases and trims whitespace.
func (s *HandicapService) CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := s.opts.Aliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *HandicapService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *HandicapService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// unwrap converts an operation result into the public (value, error) shape.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

func success[S any](s S) (results.OperationResult[S, error], error) {
	return results.SuccessResult[S, error](s), nil
}

func failure[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

func infraError[S any](format string, err error) (results.OperationResult[S, error], error) {
	return results.OperationResult[S, error]{}, fmt.Errorf(format+": %w", err)
}
