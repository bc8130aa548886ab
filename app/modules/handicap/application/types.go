package handicapservice

import (
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/google/uuid"
)

// ScoreInput is one player's score for a nine. Either Gross or Holes must be
// set. IndexAtTime overrides the index derived from stored history.
type ScoreInput struct {
	Player      string   `json:"player"`
	Gross       int      `json:"gross,omitempty"`
	Holes       []int    `json:"holes,omitempty"`
	IndexAtTime *float64 `json:"index_at_time,omitempty"`
}

// RecordRoundRequest records one nine for the group.
type RecordRoundRequest struct {
	Date    time.Time             `json:"date"`
	Variant string                `json:"variant,omitempty"`
	Nine    handicapdomain.NineID `json:"nine"`
	Source  string                `json:"source,omitempty"`
	// Social rounds are scored but excluded from handicap indexes.
	Social        bool         `json:"social,omitempty"`
	TeeTime       *time.Time   `json:"tee_time,omitempty"`
	PCC           *int         `json:"pcc,omitempty"`
	WeatherFactor *float64     `json:"weather_factor,omitempty"`
	Scores        []ScoreInput `json:"scores"`
}

// Key returns the round key of the request.
func (r RecordRoundRequest) Key() handicapdomain.RoundKey {
	return handicapdomain.NewRoundKey(r.Date, r.Variant)
}

// RecordedScore is a stored score with the derived values.
type RecordedScore struct {
	Player          string                     `json:"player"`
	Gross           int                        `json:"gross"`
	IndexAtTime     float64                    `json:"index_at_time"`
	CourseHandicap  int                        `json:"course_handicap"`
	Strokes         []int                      `json:"strokes,omitempty"`
	Stableford      int                        `json:"stableford"`
	StablefordHoles []int                      `json:"stableford_holes,omitempty"`
	AdjustedGross   *int                       `json:"adjusted_gross,omitempty"`
	Differential    *float64                   `json:"differential,omitempty"`
	IndexChange     handicapdomain.IndexChange `json:"index_change"`
}

// RoundRecorded describes a recorded nine.
type RoundRecorded struct {
	RoundID  uuid.UUID             `json:"round_id"`
	RoundKey string                `json:"round_key"`
	Nine     handicapdomain.NineID `json:"nine"`
	Eligible bool                  `json:"handicap_eligible"`
	Scores   []RecordedScore       `json:"scores"`
}

// PlayerHandicap is a player's current standing.
type PlayerHandicap struct {
	Player          string                        `json:"player"`
	Index           float64                       `json:"index"`
	Previous        float64                       `json:"previous"`
	Delta           float64                       `json:"delta"`
	Direction       handicapdomain.Direction      `json:"direction"`
	Computed        bool                          `json:"computed"`
	Cap             handicapdomain.CapKind        `json:"cap"`
	LowIndex        *float64                      `json:"low_index,omitempty"`
	Rounds          int                           `json:"rounds"`
	CourseHandicaps map[handicapdomain.NineID]int `json:"course_handicaps"`
}

// Recalculation reports a backfill.
type Recalculation struct {
	Player   string         `json:"player"`
	Checked  int            `json:"checked"`
	Updated  int            `json:"updated"`
	Handicap PlayerHandicap `json:"handicap"`
}

// ConditionsApplied reports the effect of weather on a round.
type ConditionsApplied struct {
	RoundID    uuid.UUID                 `json:"round_id"`
	RoundKey   string                    `json:"round_key"`
	Conditions handicapdomain.Conditions `json:"conditions"`
	PCC        *int                      `json:"pcc,omitempty"`
	Updated    int                       `json:"updated"`
}

// Standing is a player's season line with their rank by total points.
type Standing struct {
	Rank int `json:"rank"`
	handicapdomain.SeasonStats
}

// SeasonSummary is the season table.
type SeasonSummary struct {
	Year      int        `json:"year"`
	Standings []Standing `json:"standings"`
}
