package handicaphandlers

import (
	"context"
	"errors"
	"log/slog"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapevents "github.com/Black-And-White-Club/handicap-bot/pkg/events/handicap"
	"github.com/Black-And-White-Club/handicap-bot/pkg/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// HandicapHandlers implements the Handlers interface.
type HandicapHandlers struct {
	service handicapservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHandicapHandlers creates a new HandicapHandlers instance.
func NewHandicapHandlers(
	service handicapservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &HandicapHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleRoundSubmitted records the nine and publishes the scored result.
// Input problems produce a rejection event; anything else is returned so the
// message is redelivered.
func (h *HandicapHandlers) HandleRoundSubmitted(ctx context.Context, payload *handicapevents.RoundSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "HandicapHandlers.HandleRoundSubmitted")
	defer span.End()

	req := ToRecordRoundRequest(payload)
	key := req.Key().String()

	h.logger.InfoContext(ctx, "Round submitted",
		slog.String("round_key", key),
		slog.String("nine", payload.Nine),
		slog.Int("players", len(payload.Scores)),
	)

	recorded, err := h.service.RecordRound(ctx, req)
	if err != nil {
		if isRejection(err) {
			h.logger.WarnContext(ctx, "Round rejected",
				slog.String("round_key", key),
				slog.String("reason", err.Error()),
			)
			return []handlerwrapper.Result{{
				Topic:   handicapevents.RoundRejectedV1,
				Payload: &handicapevents.RoundRejectedPayloadV1{RoundKey: key, Reason: err.Error()},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic:   handicapevents.RoundRecordedV1,
		Payload: FromRoundRecorded(recorded),
	}}, nil
}

// HandleRecalculateRequested backfills one player and publishes the outcome.
func (h *HandicapHandlers) HandleRecalculateRequested(ctx context.Context, payload *handicapevents.PlayerRecalculateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "HandicapHandlers.HandleRecalculateRequested")
	defer span.End()

	if payload.Player == "" {
		h.logger.WarnContext(ctx, "Recalculate request without player")
		return nil, nil
	}

	res, err := h.service.RecalculatePlayer(ctx, payload.Player)
	if err != nil {
		if errors.Is(err, handicapservice.ErrPlayerNotFound) {
			h.logger.WarnContext(ctx, "Recalculate requested for unknown player",
				slog.String("player", payload.Player),
			)
			return nil, nil
		}
		return nil, err
	}

	h.logger.InfoContext(ctx, "Player recalculated",
		slog.String("player", res.Player),
		slog.Int("checked", res.Checked),
		slog.Int("updated", res.Updated),
	)

	return []handlerwrapper.Result{{
		Topic: handicapevents.PlayerRecalculatedV1,
		Payload: &handicapevents.PlayerRecalculatedPayloadV1{
			Player:    res.Player,
			Checked:   res.Checked,
			Updated:   res.Updated,
			Index:     res.Handicap.Index,
			Computed:  res.Handicap.Computed,
			Direction: string(res.Handicap.Direction),
		},
		Metadata: map[string]string{"player": res.Player},
	}}, nil
}

func isRejection(err error) bool {
	return errors.Is(err, handicapdomain.ErrValidation) ||
		errors.Is(err, handicapdomain.ErrInvalidCourseData) ||
		errors.Is(err, handicapservice.ErrRoundExists)
}
