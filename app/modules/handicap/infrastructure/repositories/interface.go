package handicapdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ScoreFilter narrows ListScores. Zero values match everything.
type ScoreFilter struct {
	Player string
	From   time.Time
	To     time.Time
}

// Repository defines the contract for handicap persistence.
type Repository interface {
	// GetPlayer retrieves a player by name.
	GetPlayer(ctx context.Context, db bun.IDB, name string) (*Player, error)

	// ListPlayers returns every player ordered by name.
	ListPlayers(ctx context.Context, db bun.IDB) ([]*Player, error)

	// UpsertPlayer creates a player or updates its initial index.
	UpsertPlayer(ctx context.Context, db bun.IDB, player *Player) error

	// GetRoundByKey retrieves a round and its scores by round key.
	GetRoundByKey(ctx context.Context, db bun.IDB, key string) (*Round, error)

	// GetRoundByUUID retrieves a round and its scores by UUID.
	GetRoundByUUID(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) (*Round, error)

	// CreateRound inserts a round and its scores.
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error

	// UpdateRoundConditions stores the weather and playing conditions of a round.
	UpdateRoundConditions(ctx context.Context, db bun.IDB, round *Round) error

	// DeleteRound removes a round and its scores.
	DeleteRound(ctx context.Context, db bun.IDB, key string) error

	// ListScores returns scores with their rounds, ordered by date and key.
	ListScores(ctx context.Context, db bun.IDB, filter ScoreFilter) ([]*RoundScore, error)

	// UpdateScore rewrites the derived columns of a score.
	UpdateScore(ctx context.Context, db bun.IDB, score *RoundScore) error
}
