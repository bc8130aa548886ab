package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// InitializeStreams creates or updates the JetStream stream during startup.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, cfg Config, logger *slog.Logger) error {
	streamConfig := jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  cfg.Subjects,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
		MaxAge:    30 * 24 * time.Hour,
	}

	stream, err := js.CreateOrUpdateStream(ctx, streamConfig)
	if err != nil {
		logger.Error("Failed to create JetStream stream",
			slog.String("stream", cfg.Stream),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	logger.Info("JetStream stream ready",
		slog.String("stream", stream.CachedInfo().Config.Name),
		slog.Any("subjects", cfg.Subjects),
	)
	return nil
}
