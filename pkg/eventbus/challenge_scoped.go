package eventbus

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChallengeIDMetadataKey carries the owning challenge on every event.
const ChallengeIDMetadataKey = "challenge_id"

// EventBus publishes and subscribes to challenge events.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// NewInProcessBus returns a watermill gochannel bus. Events are delivered to
// subscribers inside this process only.
func NewInProcessBus(logger *slog.Logger) EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewSlogLogger(logger),
	)
}

// PublishWithChallengeScope stamps msg with challengeID and publishes it on
// baseTopic. Subscribers filter on the metadata rather than on per-challenge
// topics so a single subscription sees every challenge.
func PublishWithChallengeScope(pub message.Publisher, baseTopic string, challengeID string, msg *message.Message) error {
	if challengeID == "" {
		return fmt.Errorf("challengeID cannot be empty for challenge-scoped publish")
	}

	msg.Metadata.Set(ChallengeIDMetadataKey, challengeID)
	return pub.Publish(baseTopic, msg)
}

// ChallengeIDFromMsg returns the challenge a message was published for.
func ChallengeIDFromMsg(msg *message.Message) string {
	return msg.Metadata.Get(ChallengeIDMetadataKey)
}
