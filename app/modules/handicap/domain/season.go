package handicapdomain

import "slices"

const formRounds = 5

// ScoredRound is a round with its Stableford breakdown.
type ScoredRound struct {
	PlayerRound
	Card StablefordCard
}

// HoleStat is a player's mean Stableford points on one physical hole.
type HoleStat struct {
	Hole    int
	Average float64
	Played  int
}

// SeasonStats summarises one player's calendar year.
type SeasonStats struct {
	Player         string
	Year           int
	Rounds         int
	TotalPoints    int
	AveragePoints  float64
	BestStableford int
	BestGross      int
	// Form is the mean Stableford of the player's last five rounds.
	Form          float64
	FavouriteHole *HoleStat
	WorstHole     *HoleStat
}

// Season builds SeasonStats for player from every round they have played.
// Totals and hole averages cover year only. Personal bests come from
// eligible rounds of any year.
func Season(player string, year int, rounds []ScoredRound, course Course) SeasonStats {
	stats := SeasonStats{Player: player, Year: year}

	sorted := slices.Clone(rounds)
	slices.SortStableFunc(sorted, func(a, b ScoredRound) int {
		return a.Key.Compare(b.Key)
	})

	type holeAcc struct{ points, played int }
	holes := map[int]*holeAcc{}

	var season []ScoredRound
	for _, r := range sorted {
		if r.Eligible {
			stats.BestStableford = max(stats.BestStableford, r.Card.Total)
			if g := r.GrossScore(); g > 0 && (stats.BestGross == 0 || g < stats.BestGross) {
				stats.BestGross = g
			}
		}
		if r.Key.Date.Year() != year {
			continue
		}
		season = append(season, r)
		stats.Rounds++
		stats.TotalPoints += r.Card.Total

		nine, err := course.Lookup(r.Nine)
		if err != nil || len(r.Holes) != len(nine.Holes) || len(r.Card.Points) != len(nine.Holes) {
			continue
		}
		for i, score := range r.Holes {
			if score == Blob {
				continue
			}
			acc := holes[nine.Holes[i]]
			if acc == nil {
				acc = &holeAcc{}
				holes[nine.Holes[i]] = acc
			}
			acc.points += r.Card.Points[i]
			acc.played++
		}
	}

	if stats.Rounds > 0 {
		stats.AveragePoints = RoundTenth(float64(stats.TotalPoints) / float64(stats.Rounds))
	}

	if n := len(season); n > 0 {
		recent := season[max(0, n-formRounds):]
		sum := 0
		for _, r := range recent {
			sum += r.Card.Total
		}
		stats.Form = RoundTenth(float64(sum) / float64(len(recent)))
	}

	numbers := make([]int, 0, len(holes))
	for h := range holes {
		numbers = append(numbers, h)
	}
	slices.Sort(numbers)
	for _, h := range numbers {
		acc := holes[h]
		stat := HoleStat{Hole: h, Played: acc.played, Average: RoundTenth(float64(acc.points) / float64(acc.played))}
		if stats.FavouriteHole == nil || stat.Average > stats.FavouriteHole.Average {
			fav := stat
			stats.FavouriteHole = &fav
		}
		if stats.WorstHole == nil || stat.Average < stats.WorstHole.Average {
			worst := stat
			stats.WorstHole = &worst
		}
	}
	return stats
}
