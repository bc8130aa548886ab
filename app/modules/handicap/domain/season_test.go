package handicapdomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(t *testing.T, key RoundKey, eligible bool, holes []int) ScoredRound {
	t.Helper()
	nine := DefaultCourse()[NineHoles1To9]
	card, err := Stableford(holes, nine, 0)
	require.NoError(t, err)
	return ScoredRound{
		PlayerRound: PlayerRound{Key: key, Nine: NineHoles1To9, Player: "Ben", Holes: holes, Eligible: eligible},
		Card:        card,
	}
}

func TestSeason(t *testing.T) {
	pars := DefaultCourse()[NineHoles1To9].HolePars // 4,4,5,4,3,4,4,3,4

	rounds := []ScoredRound{
		// 2024 personal best, outside the season.
		{
			PlayerRound: PlayerRound{Key: NewRoundKey(date(2024, time.June, 1), ""), Nine: NineHoles1To9, Gross: 30, Eligible: true},
			Card:        StablefordCard{Total: 25},
		},
		scored(t, NewRoundKey(date(2025, time.March, 1), ""), true, pars),
		// Birdie on hole 2, blow-up on hole 3.
		scored(t, NewRoundKey(date(2025, time.March, 8), ""), true, []int{4, 3, 8, 4, 3, 4, 4, 3, 4}),
		// Social round with a big score counts for the season but not for bests.
		{
			PlayerRound: PlayerRound{Key: NewRoundKey(date(2025, time.March, 15), ""), Nine: NineHoles1To9, Gross: 20},
			Card:        StablefordCard{Total: 30},
		},
	}

	stats := Season("Ben", 2025, rounds, DefaultCourse())

	assert.Equal(t, 3, stats.Rounds)
	assert.Equal(t, 18+17+30, stats.TotalPoints)
	assert.Equal(t, 21.7, stats.AveragePoints)
	assert.Equal(t, 25, stats.BestStableford)
	assert.Equal(t, 30, stats.BestGross)
	assert.Equal(t, 21.7, stats.Form)

	require.NotNil(t, stats.FavouriteHole)
	assert.Equal(t, 2, stats.FavouriteHole.Hole)
	assert.Equal(t, 2.5, stats.FavouriteHole.Average)
	require.NotNil(t, stats.WorstHole)
	assert.Equal(t, 3, stats.WorstHole.Hole)
	assert.Equal(t, 1.0, stats.WorstHole.Average)
	assert.Equal(t, 2, stats.WorstHole.Played)
}

func TestSeasonFormUsesLastFive(t *testing.T) {
	var rounds []ScoredRound
	for i, total := range []int{10, 10, 20, 20, 20, 20, 20} {
		rounds = append(rounds, ScoredRound{
			PlayerRound: PlayerRound{Key: NewRoundKey(date(2025, time.May, 1+i), ""), Nine: NineHoles1To9, Gross: 40, Eligible: true},
			Card:        StablefordCard{Total: total},
		})
	}

	stats := Season("Ben", 2025, rounds, DefaultCourse())
	assert.Equal(t, 20.0, stats.Form)
	assert.Nil(t, stats.FavouriteHole)
}

func TestSeasonEmpty(t *testing.T) {
	stats := Season("Ben", 2026, nil, DefaultCourse())
	assert.Zero(t, stats.Rounds)
	assert.Zero(t, stats.AveragePoints)
	assert.Nil(t, stats.WorstHole)
}
