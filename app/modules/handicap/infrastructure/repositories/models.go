package handicapdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Player is a member of the group. InitialIndex is the index used until the
// player has enough rounds for a computed one.
type Player struct {
	bun.BaseModel `bun:"table:handicap_players,alias:hp"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"name,notnull,unique"`
	InitialIndex float64   `bun:"initial_index,notnull,default:0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Round is one nine played by the group on a given day.
type Round struct {
	bun.BaseModel `bun:"table:handicap_rounds,alias:hr"`

	UUID     uuid.UUID  `bun:"uuid,pk,type:uuid,default:gen_random_uuid()"`
	RoundKey string     `bun:"round_key,notnull,unique"`
	PlayedOn time.Time  `bun:"played_on,notnull,type:date"`
	Variant  string     `bun:"variant,notnull,default:''"`
	Nine     string     `bun:"nine,notnull"`
	Source   string     `bun:"source,notnull,default:'manual'"`
	Eligible bool       `bun:"handicap_eligible,notnull,default:true"`
	TeeTime  *time.Time `bun:"tee_time"`

	PCC           *int     `bun:"pcc"`
	WeatherFactor *float64 `bun:"weather_factor"`
	TempC         *float64 `bun:"temp_c"`
	WindKmh       *float64 `bun:"wind_kmh"`
	RainMm        *float64 `bun:"rain_mm"`
	Conditions    string   `bun:"conditions,notnull,default:''"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Scores []*RoundScore `bun:"rel:has-many,join:uuid=round_uuid"`
}

// HasConditions reports whether weather has been recorded for the round.
func (r *Round) HasConditions() bool {
	return r.TempC != nil || r.WindKmh != nil || r.RainMm != nil
}

// RoundScore is one player's card for a round.
type RoundScore struct {
	bun.BaseModel `bun:"table:handicap_round_scores,alias:hs"`

	ID              int64     `bun:"id,pk,autoincrement"`
	RoundUUID       uuid.UUID `bun:"round_uuid,type:uuid,notnull"`
	Player          string    `bun:"player,notnull"`
	Gross           int       `bun:"gross,notnull"`
	Holes           []int     `bun:"holes,array"`
	IndexAtTime     float64   `bun:"index_at_time,notnull"`
	CourseHandicap  int       `bun:"course_handicap,notnull"`
	AdjustedGross   *int      `bun:"adjusted_gross"`
	Differential    *float64  `bun:"differential"`
	Stableford      int       `bun:"stableford,notnull,default:0"`
	StablefordHoles []int     `bun:"stableford_holes,array"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Round *Round `bun:"rel:belongs-to,join:round_uuid=uuid"`
}
