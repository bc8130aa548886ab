package handicaphandlers

import (
	"context"
	"io"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Handicap Service
// ------------------------

type FakeHandicapService struct {
	trace []string

	RecordRoundFunc       func(ctx context.Context, req handicapservice.RecordRoundRequest) (*handicapservice.RoundRecorded, error)
	RecalculatePlayerFunc func(ctx context.Context, player string) (*handicapservice.Recalculation, error)
}

func NewFakeHandicapService() *FakeHandicapService {
	return &FakeHandicapService{trace: []string{}}
}

func (f *FakeHandicapService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeHandicapService) RecordRound(ctx context.Context, req handicapservice.RecordRoundRequest) (*handicapservice.RoundRecorded, error) {
	f.record("RecordRound")
	if f.RecordRoundFunc != nil {
		return f.RecordRoundFunc(ctx, req)
	}
	return &handicapservice.RoundRecorded{RoundKey: req.Key().String(), Nine: req.Nine}, nil
}

func (f *FakeHandicapService) RecordScorecard(context.Context, handicapdomain.ImportedScorecard, bool, string) ([]*handicapservice.RoundRecorded, error) {
	f.record("RecordScorecard")
	return nil, nil
}

func (f *FakeHandicapService) GetPlayerHandicap(context.Context, string) (*handicapservice.PlayerHandicap, error) {
	f.record("GetPlayerHandicap")
	return nil, nil
}

func (f *FakeHandicapService) RecalculatePlayer(ctx context.Context, player string) (*handicapservice.Recalculation, error) {
	f.record("RecalculatePlayer")
	if f.RecalculatePlayerFunc != nil {
		return f.RecalculatePlayerFunc(ctx, player)
	}
	return &handicapservice.Recalculation{Player: player}, nil
}

func (f *FakeHandicapService) ApplyConditions(context.Context, uuid.UUID, handicapdomain.Conditions) (*handicapservice.ConditionsApplied, error) {
	f.record("ApplyConditions")
	return nil, nil
}

func (f *FakeHandicapService) GetSeasonSummary(context.Context, int) (*handicapservice.SeasonSummary, error) {
	f.record("GetSeasonSummary")
	return nil, nil
}

func (f *FakeHandicapService) IndexHistoryChart(context.Context, string) ([]byte, error) {
	f.record("IndexHistoryChart")
	return nil, nil
}

func (f *FakeHandicapService) ExportSeasonReport(context.Context, int, io.Writer) error {
	f.record("ExportSeasonReport")
	return nil
}

func (f *FakeHandicapService) DeleteRound(context.Context, string) error {
	f.record("DeleteRound")
	return nil
}

func (f *FakeHandicapService) ListPlayers(context.Context) ([]string, error) {
	f.record("ListPlayers")
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeHandicapService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ handicapservice.Service = (*FakeHandicapService)(nil)
