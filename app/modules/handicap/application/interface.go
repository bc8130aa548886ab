package handicapservice

import (
	"context"
	"io"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/google/uuid"
)

// Service defines the handicap application operations.
type Service interface {
	RecordRound(ctx context.Context, req RecordRoundRequest) (*RoundRecorded, error)
	RecordScorecard(ctx context.Context, card handicapdomain.ImportedScorecard, social bool, source string) ([]*RoundRecorded, error)
	GetPlayerHandicap(ctx context.Context, player string) (*PlayerHandicap, error)
	RecalculatePlayer(ctx context.Context, player string) (*Recalculation, error)
	ApplyConditions(ctx context.Context, roundID uuid.UUID, conditions handicapdomain.Conditions) (*ConditionsApplied, error)
	GetSeasonSummary(ctx context.Context, year int) (*SeasonSummary, error)
	IndexHistoryChart(ctx context.Context, player string) ([]byte, error)
	ExportSeasonReport(ctx context.Context, year int, w io.Writer) error
	DeleteRound(ctx context.Context, key string) error
	ListPlayers(ctx context.Context) ([]string, error)
}

// ConditionsScheduler queues a weather lookup for a freshly recorded round.
type ConditionsScheduler interface {
	ScheduleConditionsLookup(ctx context.Context, roundID uuid.UUID, roundKey string, teeTime *time.Time) error
}
