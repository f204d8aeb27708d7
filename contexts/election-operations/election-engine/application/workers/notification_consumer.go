package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "ballotbox/contexts/election-operations/election-engine/application"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

// NotificationConsumer is the notification sink: it subscribes to the
// election event topics and hands each structured event to the delivery log.
// The engine never formats user-facing messages; that stays here, on the
// consuming side of the bus.
type NotificationConsumer struct {
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

var notificationTopics = []string{
	"election.application.reviewed",
	"election.vote.recorded",
	"election.winner.declared",
}

func (c NotificationConsumer) Start(ctx context.Context) error {
	group := c.ConsumerGroup
	if group == "" {
		group = "election-notifications-cg"
	}
	for _, topic := range notificationTopics {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handle); err != nil {
			return err
		}
	}
	return nil
}

func (c NotificationConsumer) handle(_ context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var data map[string]any
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.Error("notification payload decode failed",
			"event", "election_notification_decode_failed",
			"module", "election-operations/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("notification delivered",
		"event", "election_notification_delivered",
		"module", "election-operations/election-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"election_id", event.PartitionKey,
	)
	return nil
}
