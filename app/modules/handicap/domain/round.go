package handicapdomain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SecondNineVariant is the key suffix for the second nine of an 18-hole day.
const SecondNineVariant = "back9"

const keyDateLayout = "2006-01-02"

var roundKeyPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:-([A-Za-z0-9]+))?$`)

// RoundKey identifies one nine played by the group. Two nines on the same
// day share a date and differ by Variant.
type RoundKey struct {
	Date    time.Time
	Variant string
}

// NewRoundKey truncates date to the calendar day.
func NewRoundKey(date time.Time, variant string) RoundKey {
	y, m, d := date.Date()
	return RoundKey{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Variant: variant}
}

// ParseRoundKey accepts "2025-12-22" and "2025-12-22-back9".
func ParseRoundKey(s string) (RoundKey, error) {
	m := roundKeyPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return RoundKey{}, fmt.Errorf("%w: round key %q", ErrValidation, s)
	}
	date, err := time.Parse(keyDateLayout, m[1])
	if err != nil {
		return RoundKey{}, fmt.Errorf("%w: round key %q: %v", ErrValidation, s, err)
	}
	return RoundKey{Date: date, Variant: m[2]}, nil
}

// String formats the key the way it is stored.
func (k RoundKey) String() string {
	if k.Variant == "" {
		return k.Date.Format(keyDateLayout)
	}
	return k.Date.Format(keyDateLayout) + "-" + k.Variant
}

// Before orders keys by date, then by variant with the plain date first.
func (k RoundKey) Before(other RoundKey) bool {
	if !k.Date.Equal(other.Date) {
		return k.Date.Before(other.Date)
	}
	if k.Variant == other.Variant {
		return false
	}
	if k.Variant == "" {
		return true
	}
	if other.Variant == "" {
		return false
	}
	return k.Variant < other.Variant
}

// Compare returns -1, 0 or 1 in Before order.
func (k RoundKey) Compare(other RoundKey) int {
	switch {
	case k.Before(other):
		return -1
	case other.Before(k):
		return 1
	default:
		return 0
	}
}

// PlayerRound is one player's result for one nine.
type PlayerRound struct {
	Key    RoundKey
	Nine   NineID
	Player string
	// Gross is the scorecard total. When zero it is derived from Holes.
	Gross int
	// Holes holds nine per-hole scores with Blob for missing holes, or nil.
	Holes []int
	// IndexAtTime is the index used for the playing handicap. It is fixed
	// when the round is submitted.
	IndexAtTime float64
	// Eligible is false for social rounds that should not affect the index.
	Eligible      bool
	PCC           *int
	WeatherFactor *float64
}

// HasHoleDetail reports whether the round carries usable per-hole scores.
func (r PlayerRound) HasHoleDetail() bool {
	if len(r.Holes) != HolesPerNine {
		return false
	}
	for _, s := range r.Holes {
		if s != Blob {
			return true
		}
	}
	return false
}

// GrossScore returns Gross, or the sum of recorded holes when Gross is unset.
func (r PlayerRound) GrossScore() int {
	if r.Gross > 0 {
		return r.Gross
	}
	total := 0
	for _, s := range r.Holes {
		if s > 0 {
			total += s
		}
	}
	return total
}

// Scorecard builds the Differential Engine input for the round on nine.
// Hole detail, when present, enables net double bogey with the course
// handicap derived from IndexAtTime.
func (r PlayerRound) Scorecard(nine Nine) Scorecard {
	card := Scorecard{
		Gross:         r.GrossScore(),
		Rating:        nine.Rating,
		Slope:         nine.Slope,
		PCC:           r.PCC,
		WeatherFactor: r.WeatherFactor,
	}
	if r.HasHoleDetail() {
		card.Holes = r.Holes
		card.HolePars = nine.HolePars
		card.StrokeIndex = nine.StrokeIndex
		card.PlayingHandicap = CourseHandicap(r.IndexAtTime, nine)
	}
	return card
}

// Conditions is the weather at tee time.
type Conditions struct {
	TempC       float64
	WindKmh     float64
	RainMm      float64
	Description string
}

// Conditions thresholds for a +1 playing conditions adjustment.
const (
	heavyRainMm          = 10.0
	strongWindKmh        = 30.0
	adverseConditionsPCC = 1
)

// EstimatePCC estimates the playing conditions adjustment from the weather.
// Heavy rain or strong wind adds one; easy conditions never subtract.
func EstimatePCC(c Conditions) int {
	if c.RainMm > heavyRainMm || c.WindKmh > strongWindKmh {
		return adverseConditionsPCC
	}
	return 0
}

// PCCPolicy decides which rounds may carry a playing conditions adjustment.
type PCCPolicy struct {
	Start time.Time
}

// DefaultPCCPolicy applies PCC to rounds after 14 December 2025.
func DefaultPCCPolicy() PCCPolicy {
	return PCCPolicy{Start: time.Date(2025, time.December, 14, 0, 0, 0, 0, time.UTC)}
}

// Applies reports whether a round on date may carry PCC.
func (p PCCPolicy) Applies(date time.Time) bool {
	return date.After(p.Start)
}
