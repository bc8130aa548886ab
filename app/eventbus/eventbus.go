// Package eventbus provides the Watermill transport the modules publish and
// subscribe through: NATS JetStream when a URL is configured, an in-process
// Go channel otherwise.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/handicap-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus publishes and subscribes to module events. Publishing to the
// empty topic routes each message by its topic metadata.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects and tunes the transport.
type Config struct {
	URL string `yaml:"url"`
	// Stream is the JetStream stream holding the Subjects.
	Stream     string        `yaml:"stream"`
	Subjects   []string      `yaml:"subjects"`
	QueueGroup string        `yaml:"queue_group"`
	AckWait    time.Duration `yaml:"ack_wait"`
}

// DefaultConfig keeps handicap events in one stream.
func DefaultConfig() Config {
	return Config{
		Stream:     "HANDICAP",
		Subjects:   []string{"handicap.>"},
		QueueGroup: "handicap",
		AckWait:    30 * time.Second,
	}
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	logger     *slog.Logger
	// shared is set when publisher and subscriber are the same Go channel.
	shared bool
}

// NewEventBus connects the configured transport.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	if cfg.URL == "" {
		logger.Info("No NATS URL configured, using in-process event bus")
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger)
		return &eventBus{publisher: pubSub, subscriber: pubSub, logger: logger, shared: true}, nil
	}

	defaults := DefaultConfig()
	if cfg.Stream == "" {
		cfg.Stream = defaults.Stream
	}
	if len(cfg.Subjects) == 0 {
		cfg.Subjects = defaults.Subjects
	}
	if cfg.QueueGroup == "" {
		cfg.QueueGroup = defaults.QueueGroup
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = defaults.AckWait
	}

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.Timeout(30 * time.Second),
	}

	natsConn, err := nc.Connect(cfg.URL, options...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	if err := InitializeStreams(ctx, js, cfg, logger); err != nil {
		natsConn.Close()
		return nil, err
	}

	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream: nats.JetStreamConfig{
				AutoProvision: false,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: cfg.QueueGroup,
			SubscribersCount: 1,
			AckWaitTimeout:   cfg.AckWait,
			CloseTimeout:     10 * time.Second,
			NatsOptions:      options,
			Unmarshaler:      marshaler,
			JetStream: nats.JetStreamConfig{
				AutoProvision: false,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverNew(),
					nc.AckExplicit(),
				},
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.Info("Connected to NATS event bus",
		slog.String("url", cfg.URL),
		slog.String("stream", cfg.Stream),
	)

	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// Publish sends msgs to topic. With an empty topic every message goes to the
// topic named in its metadata.
func (eb *eventBus) Publish(topic string, msgs ...*message.Message) error {
	if topic != "" {
		return eb.publisher.Publish(topic, msgs...)
	}
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		target := msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
		if target == "" {
			return fmt.Errorf("message %s has no topic", msg.UUID)
		}
		if err := eb.publisher.Publish(target, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				slog.String("topic", target),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
		eb.logger.Debug("Message published",
			slog.String("topic", target),
			slog.String("message_id", msg.UUID),
		)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return eb.subscriber.Subscribe(ctx, topic)
}

// Close closes the publisher, the subscriber and the NATS connection.
func (eb *eventBus) Close() error {
	var errs []error
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if !eb.shared {
		if err := eb.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
