package handicapservice

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/uptrace/bun"
)

// GetSeasonSummary returns the season table for year.
func (s *HandicapService) GetSeasonSummary(ctx context.Context, year int) (*SeasonSummary, error) {
	summaryTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*SeasonSummary, error], error) {
		summary, _, err := s.seasonSummaryLogic(ctx, db, year)
		if err != nil {
			return infraError[*SeasonSummary]("failed to build season summary", err)
		}
		return success(summary)
	}

	result, err := withTelemetry(s, ctx, "GetSeasonSummary", strconv.Itoa(year), func(ctx context.Context) (results.OperationResult[*SeasonSummary, error], error) {
		return runInTx(s, ctx, summaryTx)
	})
	return unwrap(result, err)
}

// seasonSummaryLogic builds the standings and returns the season's scores
// alongside for reporting.
func (s *HandicapService) seasonSummaryLogic(ctx context.Context, db bun.IDB, year int) (*SeasonSummary, []*handicapdb.RoundScore, error) {
	scores, err := s.repo.ListScores(ctx, db, handicapdb.ScoreFilter{})
	if err != nil {
		return nil, nil, err
	}

	byPlayer := make(map[string][]handicapdomain.ScoredRound)
	var season []*handicapdb.RoundScore
	for _, sc := range scores {
		r, err := toScoredRound(sc)
		if err != nil {
			return nil, nil, fmt.Errorf("score %d: %w", sc.ID, err)
		}
		byPlayer[sc.Player] = append(byPlayer[sc.Player], r)
		if r.Key.Date.Year() == year {
			season = append(season, sc)
		}
	}

	summary := &SeasonSummary{Year: year, Standings: []Standing{}}
	for name, rounds := range byPlayer {
		stats := handicapdomain.Season(name, year, rounds, s.opts.Course)
		if stats.Rounds == 0 {
			continue
		}
		summary.Standings = append(summary.Standings, Standing{SeasonStats: stats})
	}
	rankStandings(summary.Standings)
	return summary, season, nil
}

// rankStandings orders by total points, then average, then name. Equal
// totals and averages share a rank.
func rankStandings(standings []Standing) {
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.AveragePoints != b.AveragePoints {
			return a.AveragePoints > b.AveragePoints
		}
		return a.Player < b.Player
	})
	for i := range standings {
		if i > 0 &&
			standings[i].TotalPoints == standings[i-1].TotalPoints &&
			standings[i].AveragePoints == standings[i-1].AveragePoints {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
}
