package handicapservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/uptrace/bun"
)

const defaultSource = "manual"

// RecordRound scores and stores one nine for the group.
func (s *HandicapService) RecordRound(ctx context.Context, req RecordRoundRequest) (*RoundRecorded, error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundRecorded, error], error) {
		return s.recordRoundLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "RecordRound", req.Key().String(), func(ctx context.Context) (results.OperationResult[*RoundRecorded, error], error) {
		return runInTx(s, ctx, recordTx)
	})
	recorded, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.scheduleConditions(ctx, recorded, req)
	return recorded, nil
}

// recordRoundLogic contains the core logic.
func (s *HandicapService) recordRoundLogic(ctx context.Context, db bun.IDB, req RecordRoundRequest) (results.OperationResult[*RoundRecorded, error], error) {
	if req.Date.IsZero() {
		return failure[*RoundRecorded](fmt.Errorf("%w: round date is required", handicapdomain.ErrValidation))
	}
	if len(req.Scores) == 0 {
		return failure[*RoundRecorded](fmt.Errorf("%w: round has no scores", handicapdomain.ErrValidation))
	}
	if req.PCC != nil && req.WeatherFactor != nil {
		return failure[*RoundRecorded](fmt.Errorf("%w: PCC and weather factor are mutually exclusive", handicapdomain.ErrValidation))
	}
	nine, err := s.opts.Course.Lookup(req.Nine)
	if err != nil {
		return failure[*RoundRecorded](err)
	}

	key := req.Key()
	if _, err := s.repo.GetRoundByKey(ctx, db, key.String()); err == nil {
		return failure[*RoundRecorded](fmt.Errorf("%w: %s", ErrRoundExists, key))
	} else if !errors.Is(err, handicapdb.ErrNotFound) {
		return infraError[*RoundRecorded]("failed to check existing round", err)
	}

	source := req.Source
	if source == "" {
		source = defaultSource
	}
	round := &handicapdb.Round{
		RoundKey:      key.String(),
		PlayedOn:      key.Date,
		Variant:       key.Variant,
		Nine:          string(nine.ID),
		Source:        source,
		Eligible:      !req.Social,
		TeeTime:       req.TeeTime,
		PCC:           req.PCC,
		WeatherFactor: req.WeatherFactor,
	}

	recorded := &RoundRecorded{RoundKey: key.String(), Nine: nine.ID, Eligible: round.Eligible}
	seen := make(map[string]bool, len(req.Scores))
	var newPlayers []*handicapdb.Player

	for _, in := range req.Scores {
		name := s.CanonicalName(in.Player)
		if name == "" {
			return failure[*RoundRecorded](fmt.Errorf("%w: score without a player", handicapdomain.ErrValidation))
		}
		if seen[strings.ToLower(name)] {
			return failure[*RoundRecorded](fmt.Errorf("%w: %s appears twice", handicapdomain.ErrValidation, name))
		}
		seen[strings.ToLower(name)] = true

		if in.Holes != nil && len(in.Holes) != handicapdomain.HolesPerNine {
			return failure[*RoundRecorded](fmt.Errorf("%w: %s has %d hole scores", handicapdomain.ErrValidation, name, len(in.Holes)))
		}

		indexAtTime, created, err := s.indexAtTime(ctx, db, name, key.Date, in.IndexAtTime)
		if err != nil {
			return infraError[*RoundRecorded]("failed to derive index at time", err)
		}
		if created != nil {
			newPlayers = append(newPlayers, created)
		}

		pr := handicapdomain.PlayerRound{
			Key:           key,
			Nine:          nine.ID,
			Player:        name,
			Gross:         in.Gross,
			Holes:         in.Holes,
			IndexAtTime:   indexAtTime,
			Eligible:      round.Eligible,
			PCC:           req.PCC,
			WeatherFactor: req.WeatherFactor,
		}
		d, err := s.derive(pr)
		if err != nil {
			if isDomainError(err) {
				return failure[*RoundRecorded](fmt.Errorf("%s: %w", name, err))
			}
			return infraError[*RoundRecorded]("failed to score round", err)
		}

		round.Scores = append(round.Scores, &handicapdb.RoundScore{
			Player:          name,
			Gross:           pr.GrossScore(),
			Holes:           in.Holes,
			IndexAtTime:     indexAtTime,
			CourseHandicap:  d.CourseHandicap,
			AdjustedGross:   d.AdjustedGross,
			Differential:    d.Differential,
			Stableford:      d.Stableford,
			StablefordHoles: d.StablefordHoles,
		})
		recorded.Scores = append(recorded.Scores, RecordedScore{
			Player:          name,
			Gross:           pr.GrossScore(),
			IndexAtTime:     indexAtTime,
			CourseHandicap:  d.CourseHandicap,
			Strokes:         d.Strokes,
			Stableford:      d.Stableford,
			StablefordHoles: d.StablefordHoles,
			AdjustedGross:   d.AdjustedGross,
			Differential:    d.Differential,
		})
		if d.Differential != nil {
			s.metrics.RecordDifferential(ctx, string(nine.ID), *d.Differential)
		}
	}

	if err := s.repo.CreateRound(ctx, db, round); err != nil {
		if errors.Is(err, handicapdb.ErrDuplicateRound) {
			return failure[*RoundRecorded](fmt.Errorf("%w: %s", ErrRoundExists, key))
		}
		return infraError[*RoundRecorded]("failed to store round", err)
	}
	recorded.RoundID = round.UUID
	for _, p := range newPlayers {
		if err := s.repo.UpsertPlayer(ctx, db, p); err != nil {
			return infraError[*RoundRecorded]("failed to store player", err)
		}
	}
	s.metrics.RecordRoundRecorded(ctx, string(nine.ID), len(round.Scores))

	for i := range recorded.Scores {
		name := recorded.Scores[i].Player
		player, err := s.loadPlayer(ctx, db, name)
		if err != nil {
			return infraError[*RoundRecorded]("failed to load player", err)
		}
		rounds, _, err := s.playerRounds(ctx, db, name)
		if err != nil {
			return infraError[*RoundRecorded]("failed to load player rounds", err)
		}
		history, err := handicapdomain.BuildHistory(rounds, s.opts.Course, s.opts.PCCPolicy)
		if err != nil {
			return infraError[*RoundRecorded]("failed to build history", err)
		}
		change := s.opts.Tracker.Change(handicapdomain.Entries(history), s.initialIndex(name, player))
		if change.Current.Cap != handicapdomain.CapNone {
			s.metrics.RecordIndexCapped(ctx, string(change.Current.Cap))
		}
		recorded.Scores[i].IndexChange = change
	}

	return success(recorded)
}

// indexAtTime returns the override when given, otherwise the index the
// player held before date. For unknown players it also returns the player
// row to store once the round is saved.
func (s *HandicapService) indexAtTime(ctx context.Context, db bun.IDB, name string, date time.Time, override *float64) (float64, *handicapdb.Player, error) {
	player, err := s.loadPlayer(ctx, db, name)
	if err != nil {
		return 0, nil, err
	}
	var created *handicapdb.Player
	if player == nil {
		created = &handicapdb.Player{Name: name, InitialIndex: s.initialIndex(name, nil)}
		if override != nil {
			created.InitialIndex = *override
		}
		player = created
	}
	if override != nil {
		return *override, created, nil
	}
	if created != nil {
		return created.InitialIndex, created, nil
	}

	rounds, _, err := s.playerRounds(ctx, db, name)
	if err != nil {
		return 0, nil, err
	}
	history, err := handicapdomain.BuildHistory(rounds, s.opts.Course, s.opts.PCCPolicy)
	if err != nil {
		return 0, nil, err
	}
	res, _ := s.opts.Tracker.ComputeBefore(handicapdomain.Entries(history), date, player.InitialIndex)
	return res.Value, nil, nil
}

// scheduleConditions queues a weather lookup for rounds without conditions.
// Failure to queue is logged; the round is already stored.
func (s *HandicapService) scheduleConditions(ctx context.Context, recorded *RoundRecorded, req RecordRoundRequest) {
	if s.opts.Scheduler == nil || recorded == nil || req.PCC != nil || req.WeatherFactor != nil {
		return
	}
	if err := s.opts.Scheduler.ScheduleConditionsLookup(ctx, recorded.RoundID, recorded.RoundKey, req.TeeTime); err != nil {
		s.logger.WarnContext(ctx, "Failed to schedule conditions lookup",
			attr.ExtractCorrelationID(ctx),
			attr.RoundKey(recorded.RoundKey),
			attr.Error(err),
		)
	}
}

// RecordScorecard splits an imported scorecard into nines and records each.
// Nines already on file are skipped so a card can be imported again safely.
func (s *HandicapService) RecordScorecard(ctx context.Context, card handicapdomain.ImportedScorecard, social bool, source string) ([]*RoundRecorded, error) {
	nines, err := card.Split()
	if err != nil {
		return nil, err
	}

	var recorded []*RoundRecorded
	for _, n := range nines {
		req := RecordRoundRequest{
			Date:    n.Key.Date,
			Variant: n.Key.Variant,
			Nine:    n.Nine,
			Source:  source,
			Social:  social,
			TeeTime: card.TeeTime,
		}
		for _, p := range n.Players {
			req.Scores = append(req.Scores, ScoreInput{Player: p.Name, Gross: p.Gross, Holes: p.Holes})
		}

		r, err := s.RecordRound(ctx, req)
		if errors.Is(err, ErrRoundExists) {
			s.logger.InfoContext(ctx, "Skipping nine already on file",
				attr.ExtractCorrelationID(ctx),
				attr.RoundKey(n.Key.String()),
			)
			continue
		}
		if err != nil {
			return recorded, err
		}
		recorded = append(recorded, r)
	}
	return recorded, nil
}

// DeleteRound removes a mistaken round.
func (s *HandicapService) DeleteRound(ctx context.Context, key string) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		parsed, err := handicapdomain.ParseRoundKey(key)
		if err != nil {
			return failure[bool](err)
		}
		if err := s.repo.DeleteRound(ctx, db, parsed.String()); err != nil {
			if errors.Is(err, handicapdb.ErrNotFound) {
				return failure[bool](fmt.Errorf("%w: %s", ErrRoundNotFound, parsed))
			}
			return infraError[bool]("failed to delete round", err)
		}
		return success(true)
	}

	result, err := withTelemetry(s, ctx, "DeleteRound", key, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	})
	_, err = unwrap(result, err)
	return err
}
