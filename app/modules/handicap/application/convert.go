package handicapservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// derivedScore holds every value computed from a player's raw card.
type derivedScore struct {
	CourseHandicap  int
	Strokes         []int
	Stableford      int
	StablefordHoles []int
	AdjustedGross   *int
	Differential    *float64
}

func isDomainError(err error) bool {
	return errors.Is(err, handicapdomain.ErrValidation) || errors.Is(err, handicapdomain.ErrInvalidCourseData)
}

// toPlayerRound rebuilds the domain round from a stored score. The score's
// Round relation must be loaded.
func toPlayerRound(sc *handicapdb.RoundScore) (handicapdomain.PlayerRound, error) {
	if sc.Round == nil {
		return handicapdomain.PlayerRound{}, fmt.Errorf("score %d has no round loaded", sc.ID)
	}
	key, err := handicapdomain.ParseRoundKey(sc.Round.RoundKey)
	if err != nil {
		return handicapdomain.PlayerRound{}, err
	}
	return handicapdomain.PlayerRound{
		Key:           key,
		Nine:          handicapdomain.NineID(sc.Round.Nine),
		Player:        sc.Player,
		Gross:         sc.Gross,
		Holes:         sc.Holes,
		IndexAtTime:   sc.IndexAtTime,
		Eligible:      sc.Round.Eligible,
		PCC:           sc.Round.PCC,
		WeatherFactor: sc.Round.WeatherFactor,
	}, nil
}

func toScoredRound(sc *handicapdb.RoundScore) (handicapdomain.ScoredRound, error) {
	pr, err := toPlayerRound(sc)
	if err != nil {
		return handicapdomain.ScoredRound{}, err
	}
	return handicapdomain.ScoredRound{
		PlayerRound: pr,
		Card: handicapdomain.StablefordCard{
			CourseHandicap: sc.CourseHandicap,
			Points:         sc.StablefordHoles,
			Total:          sc.Stableford,
		},
	}, nil
}

// derive computes course handicap, Stableford and differential for a round.
func (s *HandicapService) derive(pr handicapdomain.PlayerRound) (derivedScore, error) {
	nine, err := s.opts.Course.Lookup(pr.Nine)
	if err != nil {
		return derivedScore{}, err
	}

	d := derivedScore{CourseHandicap: handicapdomain.CourseHandicap(pr.IndexAtTime, nine)}
	if pr.HasHoleDetail() {
		card, err := handicapdomain.Stableford(pr.Holes, nine, d.CourseHandicap)
		if err != nil {
			return derivedScore{}, err
		}
		d.Strokes, d.Stableford, d.StablefordHoles = card.Strokes, card.Total, card.Points
	}

	res, err := handicapdomain.RoundDifferential(pr, s.opts.Course, s.opts.PCCPolicy)
	if err != nil {
		return derivedScore{}, err
	}
	d.AdjustedGross, d.Differential = &res.AdjustedGross, &res.Value
	return d, nil
}

// applyDerived copies d onto sc and reports whether anything changed.
func applyDerived(sc *handicapdb.RoundScore, d derivedScore) bool {
	changed := sc.CourseHandicap != d.CourseHandicap ||
		sc.Stableford != d.Stableford ||
		!slices.Equal(sc.StablefordHoles, d.StablefordHoles) ||
		!equalPtr(sc.AdjustedGross, d.AdjustedGross) ||
		!equalPtr(sc.Differential, d.Differential)

	sc.CourseHandicap = d.CourseHandicap
	sc.Stableford = d.Stableford
	sc.StablefordHoles = d.StablefordHoles
	sc.AdjustedGross = d.AdjustedGross
	sc.Differential = d.Differential
	return changed
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// initialIndex returns the index a player starts from.
func (s *HandicapService) initialIndex(name string, player *handicapdb.Player) float64 {
	if player != nil {
		return player.InitialIndex
	}
	if idx, ok := s.opts.InitialIndexes[name]; ok {
		return idx
	}
	return s.opts.DefaultInitialIndex
}

// loadPlayer returns the stored player, or nil when there is none.
func (s *HandicapService) loadPlayer(ctx context.Context, db bun.IDB, name string) (*handicapdb.Player, error) {
	player, err := s.repo.GetPlayer(ctx, db, name)
	if errors.Is(err, handicapdb.ErrNotFound) {
		return nil, nil
	}
	return player, err
}

// playerRounds loads every stored round for a player.
func (s *HandicapService) playerRounds(ctx context.Context, db bun.IDB, name string) ([]handicapdomain.PlayerRound, []*handicapdb.RoundScore, error) {
	scores, err := s.repo.ListScores(ctx, db, handicapdb.ScoreFilter{Player: name})
	if err != nil {
		return nil, nil, err
	}
	rounds := make([]handicapdomain.PlayerRound, 0, len(scores))
	for _, sc := range scores {
		pr, err := toPlayerRound(sc)
		if err != nil {
			return nil, nil, err
		}
		rounds = append(rounds, pr)
	}
	return rounds, scores, nil
}

// handicapFor computes a player's standing from their rounds.
func (s *HandicapService) handicapFor(name string, prior float64, rounds []handicapdomain.PlayerRound) (PlayerHandicap, []handicapdomain.HistoryEntry, error) {
	history, err := handicapdomain.BuildHistory(rounds, s.opts.Course, s.opts.PCCPolicy)
	if err != nil {
		return PlayerHandicap{}, nil, err
	}
	change := s.opts.Tracker.Change(handicapdomain.Entries(history), prior)

	ph := PlayerHandicap{
		Player:          name,
		Index:           change.Current.Value,
		Previous:        change.Previous.Value,
		Delta:           change.Delta,
		Direction:       change.Direction,
		Computed:        change.Current.Computed,
		Cap:             change.Current.Cap,
		Rounds:          len(history),
		CourseHandicaps: make(map[handicapdomain.NineID]int, len(s.opts.Course)),
	}
	if ph.Cap == "" {
		ph.Cap = handicapdomain.CapNone
	}
	if change.Current.HasLowIndex {
		lhi := change.Current.LowIndex
		ph.LowIndex = &lhi
	}
	for _, id := range s.opts.Course.IDs() {
		ph.CourseHandicaps[id] = handicapdomain.CourseHandicap(ph.Index, s.opts.Course[id])
	}
	return ph, history, nil
}
