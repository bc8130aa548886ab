// Package handicapevents defines the topics and payloads of the handicap module.
package handicapevents

import (
	"time"
)

// Topics.
const (
	// RoundSubmittedV1 asks the module to record one nine.
	RoundSubmittedV1 = "handicap.round.submitted.v1"
	// RoundRecordedV1 is published once a nine has been stored and scored.
	RoundRecordedV1 = "handicap.round.recorded.v1"
	// RoundRejectedV1 is published when a submitted nine cannot be recorded.
	RoundRejectedV1 = "handicap.round.rejected.v1"
	// PlayerRecalculateRequestedV1 asks for a backfill of one player's rounds.
	PlayerRecalculateRequestedV1 = "handicap.player.recalculate.v1"
	// PlayerRecalculatedV1 reports the result of a backfill.
	PlayerRecalculatedV1 = "handicap.player.recalculated.v1"
)

// ScorePayloadV1 is one player's score in a submitted nine.
type ScorePayloadV1 struct {
	Player      string   `json:"player"`
	Gross       int      `json:"gross,omitempty"`
	Holes       []int    `json:"holes,omitempty"`
	IndexAtTime *float64 `json:"index_at_time,omitempty"`
}

// RoundSubmittedPayloadV1 is the payload of RoundSubmittedV1.
type RoundSubmittedPayloadV1 struct {
	Date          time.Time        `json:"date"`
	Variant       string           `json:"variant,omitempty"`
	Nine          string           `json:"nine"`
	Source        string           `json:"source,omitempty"`
	Social        bool             `json:"social,omitempty"`
	TeeTime       *time.Time       `json:"tee_time,omitempty"`
	PCC           *int             `json:"pcc,omitempty"`
	WeatherFactor *float64         `json:"weather_factor,omitempty"`
	Scores        []ScorePayloadV1 `json:"scores"`
}

// RecordedScorePayloadV1 summarises one stored score.
type RecordedScorePayloadV1 struct {
	Player         string   `json:"player"`
	Gross          int      `json:"gross"`
	CourseHandicap int      `json:"course_handicap"`
	Stableford     int      `json:"stableford"`
	Differential   *float64 `json:"differential,omitempty"`
	Index          float64  `json:"index"`
	Direction      string   `json:"direction"`
}

// RoundRecordedPayloadV1 is the payload of RoundRecordedV1.
type RoundRecordedPayloadV1 struct {
	RoundID  string                   `json:"round_id"`
	RoundKey string                   `json:"round_key"`
	Nine     string                   `json:"nine"`
	Eligible bool                     `json:"handicap_eligible"`
	Scores   []RecordedScorePayloadV1 `json:"scores"`
}

// RoundRejectedPayloadV1 is the payload of RoundRejectedV1.
type RoundRejectedPayloadV1 struct {
	RoundKey string `json:"round_key"`
	Reason   string `json:"reason"`
}

// PlayerRecalculateRequestedPayloadV1 is the payload of PlayerRecalculateRequestedV1.
type PlayerRecalculateRequestedPayloadV1 struct {
	Player string `json:"player"`
}

// PlayerRecalculatedPayloadV1 is the payload of PlayerRecalculatedV1.
type PlayerRecalculatedPayloadV1 struct {
	Player    string  `json:"player"`
	Checked   int     `json:"checked"`
	Updated   int     `json:"updated"`
	Index     float64 `json:"index"`
	Computed  bool    `json:"computed"`
	Direction string  `json:"direction"`
}
