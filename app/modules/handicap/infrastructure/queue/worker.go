package handicapqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/weather"
	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// ConditionsApplier is the part of the handicap service the worker drives.
type ConditionsApplier interface {
	ApplyConditions(ctx context.Context, roundID uuid.UUID, conditions handicapdomain.Conditions) (*handicapservice.ConditionsApplied, error)
}

// ConditionsLookupWorker looks up the weather for a round and hands it to
// the handicap service. Lookup failures are retried by River; jobs for
// rounds that no longer exist are cancelled.
type ConditionsLookupWorker struct {
	river.WorkerDefaults[ConditionsLookupJob]
	weather weather.Provider
	applier ConditionsApplier
	logger  *slog.Logger
}

// NewConditionsLookupWorker creates the worker.
func NewConditionsLookupWorker(logger *slog.Logger, provider weather.Provider, applier ConditionsApplier) *ConditionsLookupWorker {
	return &ConditionsLookupWorker{
		weather: provider,
		applier: applier,
		logger:  logger,
	}
}

// Work runs one lookup.
func (w *ConditionsLookupWorker) Work(ctx context.Context, job *river.Job[ConditionsLookupJob]) error {
	args := job.Args
	ctxLogger := w.logger.With(
		attr.RoundKey(args.RoundKey),
		attr.String("round_id", args.RoundID),
		attr.Int("attempt", job.Attempt),
	)

	roundID, err := uuid.Parse(args.RoundID)
	if err != nil {
		return river.JobCancel(fmt.Errorf("invalid round id %q: %w", args.RoundID, err))
	}
	key, err := handicapdomain.ParseRoundKey(args.RoundKey)
	if err != nil {
		return river.JobCancel(err)
	}

	conditions, err := w.weather.ConditionsAt(ctx, key.Date, args.TeeTime)
	if err != nil {
		ctxLogger.WarnContext(ctx, "Weather lookup failed, will retry", attr.Error(err))
		return fmt.Errorf("weather lookup: %w", err)
	}

	applied, err := w.applier.ApplyConditions(ctx, roundID, conditions)
	if err != nil {
		if errors.Is(err, handicapservice.ErrRoundNotFound) {
			ctxLogger.InfoContext(ctx, "Round deleted before conditions arrived")
			return river.JobCancel(err)
		}
		return fmt.Errorf("apply conditions: %w", err)
	}

	pcc := "none"
	if applied.PCC != nil {
		pcc = fmt.Sprintf("%+d", *applied.PCC)
	}
	ctxLogger.InfoContext(ctx, "Round conditions applied",
		attr.String("conditions", conditions.Description),
		attr.String("pcc", pcc),
		attr.Int("rescored", applied.Updated),
	)
	return nil
}
