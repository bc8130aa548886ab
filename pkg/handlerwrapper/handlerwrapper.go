// Package handlerwrapper adapts typed payload handlers to Watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey carries the destination topic of an outgoing message.
const TopicMetadataKey = "topic"

type ctxKey string

// CtxKeyCorrelationID holds the correlation ID of the message being handled.
const CtxKeyCorrelationID ctxKey = "correlation_id"

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// Metrics is the optional instrumentation for wrapped handlers.
type Metrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, d time.Duration)
}

// CorrelationID returns the correlation ID stored by WrapTransformingTyped.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyCorrelationID).(string)
	return id
}

// WrapTransformingTyped decodes the JSON payload into T, calls handler and
// turns its results into outgoing messages. Messages that cannot be decoded
// are logged and acknowledged so they are not redelivered forever.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics Metrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		ctx := context.WithValue(msg.Context(), CtxKeyCorrelationID, correlationID)

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		start := time.Now()
		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
			defer func() { metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start)) }()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode message payload",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			span.SetStatus(codes.Error, "decode failed")
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(r, correlationID)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		logger.DebugContext(ctx, "Handler completed",
			slog.String("handler", handlerName),
			slog.Int("published", len(out)),
		)
		return out, nil
	}
}

// NewMessage encodes a result as a Watermill message addressed to r.Topic.
func NewMessage(r Result, correlationID string) (*message.Message, error) {
	if r.Topic == "" {
		return nil, fmt.Errorf("result without topic")
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", r.Topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.Metadata.Set(TopicMetadataKey, r.Topic)
	for k, v := range r.Metadata {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}
