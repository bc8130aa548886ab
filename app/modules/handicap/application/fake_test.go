package handicapservice

import (
	"context"
	"sort"
	"sync"
	"time"

	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Handicap Repo
// ------------------------

// FakeHandicapRepo keeps players and rounds in memory. Any XFunc that is set
// replaces the in-memory behaviour for that method.
type FakeHandicapRepo struct {
	mu     sync.Mutex
	trace  []string
	nextID int64

	players map[string]*handicapdb.Player
	rounds  map[string]*handicapdb.Round

	GetPlayerFunc             func(ctx context.Context, db bun.IDB, name string) (*handicapdb.Player, error)
	ListPlayersFunc           func(ctx context.Context, db bun.IDB) ([]*handicapdb.Player, error)
	UpsertPlayerFunc          func(ctx context.Context, db bun.IDB, player *handicapdb.Player) error
	GetRoundByKeyFunc         func(ctx context.Context, db bun.IDB, key string) (*handicapdb.Round, error)
	GetRoundByUUIDFunc        func(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) (*handicapdb.Round, error)
	CreateRoundFunc           func(ctx context.Context, db bun.IDB, round *handicapdb.Round) error
	UpdateRoundConditionsFunc func(ctx context.Context, db bun.IDB, round *handicapdb.Round) error
	DeleteRoundFunc           func(ctx context.Context, db bun.IDB, key string) error
	ListScoresFunc            func(ctx context.Context, db bun.IDB, filter handicapdb.ScoreFilter) ([]*handicapdb.RoundScore, error)
	UpdateScoreFunc           func(ctx context.Context, db bun.IDB, score *handicapdb.RoundScore) error
}

func NewFakeHandicapRepo() *FakeHandicapRepo {
	return &FakeHandicapRepo{
		trace:   []string{},
		players: map[string]*handicapdb.Player{},
		rounds:  map[string]*handicapdb.Round{},
	}
}

func (f *FakeHandicapRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeHandicapRepo) GetPlayer(ctx context.Context, db bun.IDB, name string) (*handicapdb.Player, error) {
	f.record("GetPlayer")
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, db, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[name]; ok {
		return p, nil
	}
	return nil, handicapdb.ErrNotFound
}

func (f *FakeHandicapRepo) ListPlayers(ctx context.Context, db bun.IDB) ([]*handicapdb.Player, error) {
	f.record("ListPlayers")
	if f.ListPlayersFunc != nil {
		return f.ListPlayersFunc(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*handicapdb.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeHandicapRepo) UpsertPlayer(ctx context.Context, db bun.IDB, player *handicapdb.Player) error {
	f.record("UpsertPlayer")
	if f.UpsertPlayerFunc != nil {
		return f.UpsertPlayerFunc(ctx, db, player)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.players[player.Name]; ok {
		existing.InitialIndex = player.InitialIndex
		player.ID = existing.ID
		return nil
	}
	f.nextID++
	player.ID = f.nextID
	f.players[player.Name] = player
	return nil
}

func (f *FakeHandicapRepo) GetRoundByKey(ctx context.Context, db bun.IDB, key string) (*handicapdb.Round, error) {
	f.record("GetRoundByKey")
	if f.GetRoundByKeyFunc != nil {
		return f.GetRoundByKeyFunc(ctx, db, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rounds[key]; ok {
		return r, nil
	}
	return nil, handicapdb.ErrNotFound
}

func (f *FakeHandicapRepo) GetRoundByUUID(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) (*handicapdb.Round, error) {
	f.record("GetRoundByUUID")
	if f.GetRoundByUUIDFunc != nil {
		return f.GetRoundByUUIDFunc(ctx, db, roundUUID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rounds {
		if r.UUID == roundUUID {
			return r, nil
		}
	}
	return nil, handicapdb.ErrNotFound
}

func (f *FakeHandicapRepo) CreateRound(ctx context.Context, db bun.IDB, round *handicapdb.Round) error {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, db, round)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[round.RoundKey]; ok {
		return handicapdb.ErrDuplicateRound
	}
	if round.UUID == uuid.Nil {
		round.UUID = uuid.New()
	}
	for _, sc := range round.Scores {
		f.nextID++
		sc.ID = f.nextID
		sc.RoundUUID = round.UUID
	}
	f.rounds[round.RoundKey] = round
	return nil
}

func (f *FakeHandicapRepo) UpdateRoundConditions(ctx context.Context, db bun.IDB, round *handicapdb.Round) error {
	f.record("UpdateRoundConditions")
	if f.UpdateRoundConditionsFunc != nil {
		return f.UpdateRoundConditionsFunc(ctx, db, round)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[round.RoundKey]; !ok {
		return handicapdb.ErrNotFound
	}
	f.rounds[round.RoundKey] = round
	return nil
}

func (f *FakeHandicapRepo) DeleteRound(ctx context.Context, db bun.IDB, key string) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, db, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[key]; !ok {
		return handicapdb.ErrNotFound
	}
	delete(f.rounds, key)
	return nil
}

func (f *FakeHandicapRepo) ListScores(ctx context.Context, db bun.IDB, filter handicapdb.ScoreFilter) ([]*handicapdb.RoundScore, error) {
	f.record("ListScores")
	if f.ListScoresFunc != nil {
		return f.ListScoresFunc(ctx, db, filter)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*handicapdb.RoundScore
	for _, r := range f.rounds {
		if !filter.From.IsZero() && r.PlayedOn.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !r.PlayedOn.Before(filter.To) {
			continue
		}
		for _, sc := range r.Scores {
			if filter.Player != "" && sc.Player != filter.Player {
				continue
			}
			sc.Round = r
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Round, out[j].Round
		if !a.PlayedOn.Equal(b.PlayedOn) {
			return a.PlayedOn.Before(b.PlayedOn)
		}
		if a.Variant != b.Variant {
			return a.Variant < b.Variant
		}
		return out[i].Player < out[j].Player
	})
	return out, nil
}

func (f *FakeHandicapRepo) UpdateScore(ctx context.Context, db bun.IDB, score *handicapdb.RoundScore) error {
	f.record("UpdateScore")
	if f.UpdateScoreFunc != nil {
		return f.UpdateScoreFunc(ctx, db, score)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeHandicapRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Count returns how often a method was called.
func (f *FakeHandicapRepo) Count(step string) int {
	n := 0
	for _, s := range f.Trace() {
		if s == step {
			n++
		}
	}
	return n
}

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	mu        sync.Mutex
	Scheduled []string
	Err       error
}

func (f *FakeScheduler) ScheduleConditionsLookup(ctx context.Context, roundID uuid.UUID, roundKey string, teeTime *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Scheduled = append(f.Scheduled, roundKey)
	return f.Err
}

// Ensure the fakes actually satisfy the interfaces
var (
	_ handicapdb.Repository = (*FakeHandicapRepo)(nil)
	_ ConditionsScheduler   = (*FakeScheduler)(nil)
)
