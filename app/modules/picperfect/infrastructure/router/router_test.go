package picperfectrouter

import (
	"context"
	"testing"
	"time"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandlers struct {
	received chan *message.Message
}

func (f *fakeHandlers) HandleChallengeEvent(msg *message.Message) error {
	f.received <- msg
	return nil
}

func TestEventRouterDeliversEveryTopic(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)

	obs := observability.NewTestObservability()
	bus := eventbus.NewInProcessBus(obs.Logger)
	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(obs.Logger))
	require.NoError(t, err)

	r := NewEventRouter(obs.Logger, wmRouter, bus, obs.Registry)
	assert.False(t, r.metricsEnabled)

	handlers := &fakeHandlers{received: make(chan *message.Message, len(picperfectservice.AllTopics))}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Configure(ctx, handlers))

	go func() { _ = wmRouter.Run(ctx) }()
	select {
	case <-wmRouter.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	defer r.Close()

	for _, topic := range picperfectservice.AllTopics {
		msg := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
		middleware.SetCorrelationID("corr-1", msg)
		require.NoError(t, eventbus.PublishWithChallengeScope(bus, topic, "spring-2026", msg))
	}

	for range picperfectservice.AllTopics {
		select {
		case msg := <-handlers.received:
			assert.Equal(t, "spring-2026", eventbus.ChallengeIDFromMsg(msg))
			assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))
		case <-time.After(5 * time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestNewEventRouterEnablesMetricsOutsideTests(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, "development")

	obs := observability.NewTestObservability()
	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NopLogger{})
	require.NoError(t, err)

	r := NewEventRouter(obs.Logger, wmRouter, eventbus.NewInProcessBus(obs.Logger), obs.Registry)
	assert.True(t, r.metricsEnabled)

	r = NewEventRouter(obs.Logger, wmRouter, nil, nil)
	assert.False(t, r.metricsEnabled)
}
