package handicapdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a player or round does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRound is returned when a round key is already stored.
	ErrDuplicateRound = errors.New("round already recorded")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new handicap repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetPlayer retrieves a player by name.
func (r *Impl) GetPlayer(ctx context.Context, db bun.IDB, name string) (*Player, error) {
	db = r.resolveDB(db)
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// ListPlayers returns every player ordered by name.
func (r *Impl) ListPlayers(ctx context.Context, db bun.IDB) ([]*Player, error) {
	db = r.resolveDB(db)
	var players []*Player
	if err := db.NewSelect().Model(&players).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// UpsertPlayer creates a player or updates its initial index.
func (r *Impl) UpsertPlayer(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)
	player.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(player).
		On("CONFLICT (name) DO UPDATE").
		Set("initial_index = EXCLUDED.initial_index").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

// GetRoundByKey retrieves a round and its scores by round key.
func (r *Impl) GetRoundByKey(ctx context.Context, db bun.IDB, key string) (*Round, error) {
	return r.getRound(ctx, db, "hr.round_key = ?", key)
}

// GetRoundByUUID retrieves a round and its scores by UUID.
func (r *Impl) GetRoundByUUID(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) (*Round, error) {
	return r.getRound(ctx, db, "hr.uuid = ?", roundUUID)
}

func (r *Impl) getRound(ctx context.Context, db bun.IDB, where string, arg any) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Relation("Scores", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("hs.player ASC")
		}).
		Where(where, arg).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

// CreateRound inserts a round and its scores. A round key that already
// exists yields ErrDuplicateRound.
func (r *Impl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if round.UUID == uuid.Nil {
		round.UUID = uuid.New()
	}
	now := time.Now()
	round.CreatedAt, round.UpdatedAt = now, now

	res, err := db.NewInsert().
		Model(round).
		On("CONFLICT (round_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrDuplicateRound
	}

	if len(round.Scores) == 0 {
		return nil
	}
	for _, s := range round.Scores {
		s.RoundUUID = round.UUID
		s.CreatedAt, s.UpdatedAt = now, now
	}
	if _, err := db.NewInsert().Model(&round.Scores).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert round scores: %w", err)
	}
	return nil
}

// UpdateRoundConditions stores the weather and playing conditions of a round.
func (r *Impl) UpdateRoundConditions(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	round.UpdatedAt = time.Now()
	res, err := db.NewUpdate().
		Model(round).
		Column("pcc", "weather_factor", "temp_c", "wind_kmh", "rain_mm", "conditions", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update round conditions: %w", err)
	}
	return requireRow(res)
}

// DeleteRound removes a round and its scores.
func (r *Impl) DeleteRound(ctx context.Context, db bun.IDB, key string) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("round_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return requireRow(res)
}

// ListScores returns scores with their rounds, ordered by date and key.
func (r *Impl) ListScores(ctx context.Context, db bun.IDB, filter ScoreFilter) ([]*RoundScore, error) {
	db = r.resolveDB(db)
	var scores []*RoundScore
	q := db.NewSelect().
		Model(&scores).
		Relation("Round")
	if filter.Player != "" {
		q = q.Where("hs.player = ?", filter.Player)
	}
	if !filter.From.IsZero() {
		q = q.Where("round.played_on >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("round.played_on < ?", filter.To)
	}
	err := q.Order("round.played_on ASC", "round.variant ASC", "hs.player ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return scores, nil
}

// UpdateScore rewrites the derived columns of a score.
func (r *Impl) UpdateScore(ctx context.Context, db bun.IDB, score *RoundScore) error {
	db = r.resolveDB(db)
	score.UpdatedAt = time.Now()
	res, err := db.NewUpdate().
		Model(score).
		Column("course_handicap", "adjusted_gross", "differential", "stableford", "stableford_holes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
