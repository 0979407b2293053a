package picperfectservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
)

// Event topics.
const (
	TopicImageSubmitted       = "picperfect.image.submitted"
	TopicHiddenImageSubmitted = "picperfect.hidden_image.submitted"
	TopicVotesCast            = "picperfect.votes.cast"
	TopicScoresCalculated     = "picperfect.scores.calculated"
	TopicStateChanged         = "picperfect.state.changed"
	TopicChallengeStarted     = "picperfect.challenge.started"
	TopicChallengeReset       = "picperfect.challenge.reset"
)

// AllTopics lists every topic the service publishes on.
var AllTopics = []string{
	TopicImageSubmitted,
	TopicHiddenImageSubmitted,
	TopicVotesCast,
	TopicScoresCalculated,
	TopicStateChanged,
	TopicChallengeStarted,
	TopicChallengeReset,
}

// EventEnvelope is the JSON body of every published message.
type EventEnvelope struct {
	ChallengeID string    `json:"challengeId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Payload     any       `json:"payload"`
}

// publish emits an event after the operation's transaction committed.
// Publishing failures are logged, never returned: the state change already
// happened.
func (s *PicPerfectService) publish(ctx context.Context, topic, challengeID string, payload any) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(EventEnvelope{
		ChallengeID: challengeID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode event",
			attr.String("topic", topic),
			attr.ChallengeID(challengeID),
			attr.Error(err),
		)
		return
	}

	msg := message.NewMessage(uuid.NewString(), body)
	msg.SetContext(ctx)
	if cid := attr.CorrelationID(ctx); cid != "" {
		middleware.SetCorrelationID(cid, msg)
	}

	if err := eventbus.PublishWithChallengeScope(s.publisher, topic, challengeID, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.ChallengeID(challengeID),
			attr.Error(err),
		)
	}
}
