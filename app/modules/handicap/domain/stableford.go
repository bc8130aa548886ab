package handicapdomain

import "fmt"

// CourseHandicap converts an index into strokes for a nine using its
// published slope and rating. The result is never negative.
func CourseHandicap(index float64, nine Nine) int {
	ch := RoundWhole(index*nine.SlopeDisplay/113 + (nine.RatingDisplay - float64(nine.Par)))
	return max(ch, 0)
}

// HolePoints scores one hole. A missing score earns nothing.
func HolePoints(gross, par, strokes int) int {
	if gross <= 0 {
		return 0
	}
	switch diff := gross - strokes - par; {
	case diff <= -2:
		return 4
	case diff == -1:
		return 3
	case diff == 0:
		return 2
	case diff == 1:
		return 1
	default:
		return 0
	}
}

// StablefordCard is the per-hole breakdown of a Stableford round.
type StablefordCard struct {
	CourseHandicap int
	Strokes        []int
	Points         []int
	Total          int
}

// Stableford scores a nine for a player with the given course handicap.
// Strokes are allocated with AllocateByStrokeIndex.
func Stableford(holes []int, nine Nine, courseHandicap int) (StablefordCard, error) {
	if len(nine.HolePars) != HolesPerNine || len(nine.StrokeIndex) != len(nine.HolePars) {
		return StablefordCard{}, fmt.Errorf("%w: %d pars and %d stroke indexes",
			ErrInvalidCourseData, len(nine.HolePars), len(nine.StrokeIndex))
	}
	if len(holes) != HolesPerNine {
		return StablefordCard{}, fmt.Errorf("%w: got %d hole scores, want %d", ErrValidation, len(holes), HolesPerNine)
	}

	card := StablefordCard{
		CourseHandicap: courseHandicap,
		Strokes:        AllocateByStrokeIndex(courseHandicap, nine.StrokeIndex),
		Points:         make([]int, HolesPerNine),
	}
	for i, gross := range holes {
		if gross < 0 {
			return StablefordCard{}, fmt.Errorf("%w: hole %d score %d", ErrValidation, i+1, gross)
		}
		card.Points[i] = HolePoints(gross, nine.HolePars[i], card.Strokes[i])
		card.Total += card.Points[i]
	}
	return card, nil
}

// StablefordForIndex derives the course handicap from index and scores the nine.
func StablefordForIndex(holes []int, nine Nine, index float64) (StablefordCard, error) {
	return Stableford(holes, nine, CourseHandicap(index, nine))
}
