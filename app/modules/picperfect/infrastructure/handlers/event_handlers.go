package picperfecthandlers

import (
	"encoding/json"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
)

// HandleChallengeEvent writes every published challenge event to the audit
// log. Malformed messages are logged and acked; redelivery cannot fix them.
func (h *PicPerfectHandlers) HandleChallengeEvent(msg *message.Message) error {
	ctx := msg.Context()
	topic := message.SubscribeTopicFromCtx(ctx)

	var envelope picperfectservice.EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		h.logger.WarnContext(ctx, "Dropping malformed challenge event",
			attr.CorrelationIDFromMsg(msg),
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}

	challengeID := eventbus.ChallengeIDFromMsg(msg)
	if challengeID == "" {
		challengeID = envelope.ChallengeID
	}

	h.logger.InfoContext(ctx, "Challenge event",
		attr.CorrelationIDFromMsg(msg),
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
		attr.ChallengeID(challengeID),
		attr.Time("occurred_at", envelope.OccurredAt),
	)
	h.metrics.RecordEventHandled(ctx, topic)
	return nil
}
