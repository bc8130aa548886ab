package handicaphttp

import (
	"context"
	"io"
	"sync"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// ------------------------
// Fake Handicap Service
// ------------------------

type FakeHandicapService struct {
	trace []string

	RecordScorecardFunc    func(ctx context.Context, card handicapdomain.ImportedScorecard, social bool, source string) ([]*handicapservice.RoundRecorded, error)
	GetPlayerHandicapFunc  func(ctx context.Context, player string) (*handicapservice.PlayerHandicap, error)
	GetSeasonSummaryFunc   func(ctx context.Context, year int) (*handicapservice.SeasonSummary, error)
	IndexHistoryChartFunc  func(ctx context.Context, player string) ([]byte, error)
	ExportSeasonReportFunc func(ctx context.Context, year int, w io.Writer) error
	DeleteRoundFunc        func(ctx context.Context, key string) error
	ListPlayersFunc        func(ctx context.Context) ([]string, error)
}

func NewFakeHandicapService() *FakeHandicapService {
	return &FakeHandicapService{trace: []string{}}
}

func (f *FakeHandicapService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeHandicapService) RecordRound(context.Context, handicapservice.RecordRoundRequest) (*handicapservice.RoundRecorded, error) {
	f.record("RecordRound")
	return nil, nil
}

func (f *FakeHandicapService) RecordScorecard(ctx context.Context, card handicapdomain.ImportedScorecard, social bool, source string) ([]*handicapservice.RoundRecorded, error) {
	f.record("RecordScorecard")
	if f.RecordScorecardFunc != nil {
		return f.RecordScorecardFunc(ctx, card, social, source)
	}
	return nil, nil
}

func (f *FakeHandicapService) GetPlayerHandicap(ctx context.Context, player string) (*handicapservice.PlayerHandicap, error) {
	f.record("GetPlayerHandicap")
	if f.GetPlayerHandicapFunc != nil {
		return f.GetPlayerHandicapFunc(ctx, player)
	}
	return &handicapservice.PlayerHandicap{Player: player}, nil
}

func (f *FakeHandicapService) RecalculatePlayer(context.Context, string) (*handicapservice.Recalculation, error) {
	f.record("RecalculatePlayer")
	return nil, nil
}

func (f *FakeHandicapService) ApplyConditions(context.Context, uuid.UUID, handicapdomain.Conditions) (*handicapservice.ConditionsApplied, error) {
	f.record("ApplyConditions")
	return nil, nil
}

func (f *FakeHandicapService) GetSeasonSummary(ctx context.Context, year int) (*handicapservice.SeasonSummary, error) {
	f.record("GetSeasonSummary")
	if f.GetSeasonSummaryFunc != nil {
		return f.GetSeasonSummaryFunc(ctx, year)
	}
	return &handicapservice.SeasonSummary{Year: year}, nil
}

func (f *FakeHandicapService) IndexHistoryChart(ctx context.Context, player string) ([]byte, error) {
	f.record("IndexHistoryChart")
	if f.IndexHistoryChartFunc != nil {
		return f.IndexHistoryChartFunc(ctx, player)
	}
	return nil, nil
}

func (f *FakeHandicapService) ExportSeasonReport(ctx context.Context, year int, w io.Writer) error {
	f.record("ExportSeasonReport")
	if f.ExportSeasonReportFunc != nil {
		return f.ExportSeasonReportFunc(ctx, year, w)
	}
	return nil
}

func (f *FakeHandicapService) DeleteRound(ctx context.Context, key string) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, key)
	}
	return nil
}

func (f *FakeHandicapService) ListPlayers(ctx context.Context) ([]string, error) {
	f.record("ListPlayers")
	if f.ListPlayersFunc != nil {
		return f.ListPlayersFunc(ctx)
	}
	return nil, nil
}

func (f *FakeHandicapService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ handicapservice.Service = (*FakeHandicapService)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
	Err       error
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Published: map[string][]*message.Message{}}
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Published[topic] = append(p.Published[topic], msgs...)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

var _ message.Publisher = (*FakePublisher)(nil)
