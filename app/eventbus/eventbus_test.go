package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/handicap-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessBusRoutesByMetadata(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus, err := NewEventBus(ctx, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer bus.Close()

	messages, err := bus.Subscribe(ctx, "handicap.round.recorded.v1")
	require.NoError(t, err)

	msg, err := handlerwrapper.NewMessage(handlerwrapper.Result{
		Topic:   "handicap.round.recorded.v1",
		Payload: map[string]string{"round_key": "2025-03-01"},
	}, "corr")
	require.NoError(t, err)
	require.NoError(t, bus.Publish("", msg))

	select {
	case got := <-messages:
		assert.JSONEq(t, `{"round_key":"2025-03-01"}`, string(got.Payload))
		got.Ack()
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestPublishWithoutTopic(t *testing.T) {
	bus, err := NewEventBus(context.Background(), Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer bus.Close()

	err = bus.Publish("", message.NewMessage("1", []byte(`{}`)))
	assert.Error(t, err)
}
