package handicapservice

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/uptrace/bun"
)

// GetPlayerHandicap recomputes a player's index from stored history.
func (s *HandicapService) GetPlayerHandicap(ctx context.Context, player string) (*PlayerHandicap, error) {
	name := s.CanonicalName(player)
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*PlayerHandicap, error], error) {
		return s.getPlayerHandicapLogic(ctx, db, name)
	}

	result, err := withTelemetry(s, ctx, "GetPlayerHandicap", name, func(ctx context.Context) (results.OperationResult[*PlayerHandicap, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

// getPlayerHandicapLogic contains the core logic.
func (s *HandicapService) getPlayerHandicapLogic(ctx context.Context, db bun.IDB, name string) (results.OperationResult[*PlayerHandicap, error], error) {
	player, err := s.loadPlayer(ctx, db, name)
	if err != nil {
		return infraError[*PlayerHandicap]("failed to load player", err)
	}
	rounds, _, err := s.playerRounds(ctx, db, name)
	if err != nil {
		return infraError[*PlayerHandicap]("failed to load player rounds", err)
	}
	if player == nil && len(rounds) == 0 {
		return failure[*PlayerHandicap](fmt.Errorf("%w: %s", ErrPlayerNotFound, name))
	}

	ph, _, err := s.handicapFor(name, s.initialIndex(name, player), rounds)
	if err != nil {
		return infraError[*PlayerHandicap]("failed to compute handicap", err)
	}
	return success(&ph)
}

// RecalculatePlayer recomputes every stored derived value for a player from
// the raw cards and rewrites the rows that differ.
func (s *HandicapService) RecalculatePlayer(ctx context.Context, player string) (*Recalculation, error) {
	name := s.CanonicalName(player)
	recalcTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*Recalculation, error], error) {
		return s.recalculatePlayerLogic(ctx, db, name)
	}

	result, err := withTelemetry(s, ctx, "RecalculatePlayer", name, func(ctx context.Context) (results.OperationResult[*Recalculation, error], error) {
		return runInTx(s, ctx, recalcTx)
	})
	return unwrap(result, err)
}

// recalculatePlayerLogic contains the core logic.
func (s *HandicapService) recalculatePlayerLogic(ctx context.Context, db bun.IDB, name string) (results.OperationResult[*Recalculation, error], error) {
	rounds, scores, err := s.playerRounds(ctx, db, name)
	if err != nil {
		return infraError[*Recalculation]("failed to load player rounds", err)
	}
	if len(scores) == 0 {
		return failure[*Recalculation](fmt.Errorf("%w: %s", ErrPlayerNotFound, name))
	}

	out := &Recalculation{Player: name}
	for i, sc := range scores {
		out.Checked++
		d, err := s.derive(rounds[i])
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping round that cannot be scored",
				attr.ExtractCorrelationID(ctx),
				attr.Player(name),
				attr.RoundKey(sc.Round.RoundKey),
				attr.Error(err),
			)
			continue
		}
		if !applyDerived(sc, d) {
			continue
		}
		if err := s.repo.UpdateScore(ctx, db, sc); err != nil {
			return infraError[*Recalculation]("failed to update score", err)
		}
		out.Updated++
	}

	player, err := s.loadPlayer(ctx, db, name)
	if err != nil {
		return infraError[*Recalculation]("failed to load player", err)
	}
	ph, _, err := s.handicapFor(name, s.initialIndex(name, player), rounds)
	if err != nil {
		return infraError[*Recalculation]("failed to compute handicap", err)
	}
	out.Handicap = ph

	s.logger.InfoContext(ctx, "Player recalculated",
		attr.ExtractCorrelationID(ctx),
		attr.Player(name),
		attr.Int("checked", out.Checked),
		attr.Int("updated", out.Updated),
		attr.Float64("index", ph.Index),
	)
	return success(out)
}

// ListPlayers returns the names of every known player.
func (s *HandicapService) ListPlayers(ctx context.Context) ([]string, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		players, err := s.repo.ListPlayers(ctx, db)
		if err != nil {
			return infraError[[]string]("failed to list players", err)
		}
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.Name)
		}
		return success(names)
	}

	result, err := withTelemetry(s, ctx, "ListPlayers", "all", func(ctx context.Context) (results.OperationResult[[]string, error], error) {
		return runInTx(s, ctx, listTx)
	})
	return unwrap(result, err)
}
