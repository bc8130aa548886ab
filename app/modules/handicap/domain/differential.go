package handicapdomain

import "fmt"

// Blob is the hole score recorded when a player picked up or left the hole
// blank. For handicap purposes it counts as net double bogey.
const Blob = 0

// Scorecard is the input to the Differential Engine for one nine.
//
// When Holes is nil the round is scored from Gross alone. When Holes is set
// the adjusted gross is built hole by hole with net double bogey, which needs
// HolePars, StrokeIndex and the player's PlayingHandicap.
type Scorecard struct {
	Gross           int
	Holes           []int
	Rating          float64
	Slope           float64
	PlayingHandicap int
	HolePars        []int
	StrokeIndex     []int

	// PCC is the playing conditions adjustment (-1, 0 or +1).
	PCC *int
	// WeatherFactor is the multiplier used before PCC existed. It is only
	// honoured for rounds recorded that way and never together with PCC.
	WeatherFactor *float64
}

// HoleByHole reports whether per-hole scores were supplied.
func (c Scorecard) HoleByHole() bool { return c.Holes != nil }

// DifferentialResult is the output of ComputeDifferential.
type DifferentialResult struct {
	AdjustedGross int
	Value         float64
}

// AdjustedGross applies net double bogey to a nine: each hole is capped at
// par + 2 + strokes received, where strokes come from AllocateSequential.
// Blob holes count as the cap.
func AdjustedGross(holes, pars []int, courseHandicap int, strokeIndex []int) (int, error) {
	if len(holes) != HolesPerNine {
		return 0, fmt.Errorf("%w: got %d hole scores, want %d", ErrValidation, len(holes), HolesPerNine)
	}
	if len(pars) != HolesPerNine || len(strokeIndex) != HolesPerNine {
		return 0, fmt.Errorf("%w: %d pars and %d stroke indexes for %d holes",
			ErrInvalidCourseData, len(pars), len(strokeIndex), HolesPerNine)
	}

	strokes := AllocateSequential(courseHandicap, strokeIndex)

	total := 0
	for i, score := range holes {
		if score < 0 {
			return 0, fmt.Errorf("%w: hole %d score %d", ErrValidation, i+1, score)
		}
		maxScore := pars[i] + 2 + strokes[i]
		if score == Blob || score > maxScore {
			score = maxScore
		}
		total += score
	}
	return total, nil
}

// ComputeDifferential converts a nine into an 18-hole equivalent score
// differential: (2*adjusted - 2*rating) * 113 / slope, then PCC or the legacy
// weather factor, rounded to one decimal.
func ComputeDifferential(card Scorecard) (DifferentialResult, error) {
	if card.Slope <= 0 {
		return DifferentialResult{}, fmt.Errorf("%w: slope %.1f", ErrValidation, card.Slope)
	}
	if card.Rating <= 0 {
		return DifferentialResult{}, fmt.Errorf("%w: rating %.1f", ErrValidation, card.Rating)
	}
	if card.PCC != nil && card.WeatherFactor != nil {
		return DifferentialResult{}, fmt.Errorf("%w: PCC and weather factor are mutually exclusive", ErrValidation)
	}
	if card.PCC != nil && (*card.PCC < -1 || *card.PCC > 1) {
		return DifferentialResult{}, fmt.Errorf("%w: PCC %d outside -1..1", ErrValidation, *card.PCC)
	}
	if card.WeatherFactor != nil && *card.WeatherFactor <= 0 {
		return DifferentialResult{}, fmt.Errorf("%w: weather factor %.2f", ErrValidation, *card.WeatherFactor)
	}

	adjusted := card.Gross
	if card.HoleByHole() {
		var err error
		adjusted, err = AdjustedGross(card.Holes, card.HolePars, card.PlayingHandicap, card.StrokeIndex)
		if err != nil {
			return DifferentialResult{}, err
		}
	} else if card.Gross <= 0 {
		return DifferentialResult{}, fmt.Errorf("%w: gross score %d", ErrValidation, card.Gross)
	}

	diff := (2*float64(adjusted) - 2*card.Rating) * 113 / card.Slope
	if card.PCC != nil {
		diff += float64(*card.PCC)
	}
	if card.WeatherFactor != nil {
		diff *= *card.WeatherFactor
	}

	return DifferentialResult{
		AdjustedGross: adjusted,
		Value:         RoundTenth(diff),
	}, nil
}
