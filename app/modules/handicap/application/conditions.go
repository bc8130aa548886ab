package handicapservice

import (
	"context"
	"errors"
	"fmt"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApplyConditions stores the weather for a round, sets its PCC where the
// policy allows and rescores the round.
func (s *HandicapService) ApplyConditions(ctx context.Context, roundID uuid.UUID, conditions handicapdomain.Conditions) (*ConditionsApplied, error) {
	applyTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ConditionsApplied, error], error) {
		return s.applyConditionsLogic(ctx, db, roundID, conditions)
	}

	result, err := withTelemetry(s, ctx, "ApplyConditions", roundID.String(), func(ctx context.Context) (results.OperationResult[*ConditionsApplied, error], error) {
		return runInTx(s, ctx, applyTx)
	})
	return unwrap(result, err)
}

// applyConditionsLogic contains the core logic.
func (s *HandicapService) applyConditionsLogic(ctx context.Context, db bun.IDB, roundID uuid.UUID, c handicapdomain.Conditions) (results.OperationResult[*ConditionsApplied, error], error) {
	round, err := s.repo.GetRoundByUUID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, handicapdb.ErrNotFound) {
			return failure[*ConditionsApplied](fmt.Errorf("%w: %s", ErrRoundNotFound, roundID))
		}
		return infraError[*ConditionsApplied]("failed to load round", err)
	}
	key, err := handicapdomain.ParseRoundKey(round.RoundKey)
	if err != nil {
		return infraError[*ConditionsApplied]("stored round key is invalid", err)
	}

	round.TempC, round.WindKmh, round.RainMm = &c.TempC, &c.WindKmh, &c.RainMm
	round.Conditions = c.Description
	if round.WeatherFactor == nil && s.opts.PCCPolicy.Applies(key.Date) {
		pcc := handicapdomain.EstimatePCC(c)
		round.PCC = &pcc
	}
	if err := s.repo.UpdateRoundConditions(ctx, db, round); err != nil {
		return infraError[*ConditionsApplied]("failed to store conditions", err)
	}

	out := &ConditionsApplied{RoundID: round.UUID, RoundKey: round.RoundKey, Conditions: c, PCC: round.PCC}
	for _, sc := range round.Scores {
		sc.Round = round
		pr, err := toPlayerRound(sc)
		if err != nil {
			return infraError[*ConditionsApplied]("failed to rebuild round", err)
		}
		d, err := s.derive(pr)
		if err != nil {
			return infraError[*ConditionsApplied]("failed to rescore round", err)
		}
		if !applyDerived(sc, d) {
			continue
		}
		if err := s.repo.UpdateScore(ctx, db, sc); err != nil {
			return infraError[*ConditionsApplied]("failed to update score", err)
		}
		out.Updated++
	}
	return success(out)
}
