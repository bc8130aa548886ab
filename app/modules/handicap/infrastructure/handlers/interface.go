package handicaphandlers

import (
	"context"

	handicapevents "github.com/Black-And-White-Club/handicap-bot/pkg/events/handicap"
	"github.com/Black-And-White-Club/handicap-bot/pkg/handlerwrapper"
)

// Handlers defines the interface for handicap event handlers.
type Handlers interface {
	// HandleRoundSubmitted records a submitted nine.
	HandleRoundSubmitted(ctx context.Context, payload *handicapevents.RoundSubmittedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRecalculateRequested backfills one player's stored rounds.
	HandleRecalculateRequested(ctx context.Context, payload *handicapevents.PlayerRecalculateRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
